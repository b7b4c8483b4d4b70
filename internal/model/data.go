package model

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Table is the generic tabular shape every derived view can be exported as
type Table struct {
	Name    string          `json:"name"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"` // nil cells are nulls
}

// Float returns a pointer to v, used for nullable output cells
func Float(v float64) *float64 {
	return &v
}

// cell converts an optional value into a table cell
func cell(v float64, ok bool) interface{} {
	if !ok {
		return nil
	}
	return v
}

// YearColumn renames an indicator to its per-year column, e.g. access_to_electricity_2020
func YearColumn(ind Indicator, year int) string {
	return fmt.Sprintf("%s_%d", ind, year)
}

// DeltaColumn is the column holding predicted minus baseline
func DeltaColumn(ind Indicator) string {
	return string(ind) + "_delta"
}

// ------------------- Comparison -------------------

// ComparisonRow joins a country's baseline-year observation with its 2030 prediction
type ComparisonRow struct {
	Country      string
	Region       Region
	BaselineYear int
	Indicators   []Indicator           // tracked indicators, in column order
	Baseline     map[Indicator]float64 // {indicator}_{baselineYear}
	Predicted    map[Indicator]float64 // {indicator}
	Delta        map[Indicator]float64 // predicted - baseline, only when both are non-null
}

// DeltaValue returns the delta for an indicator and whether it is defined
func (r ComparisonRow) DeltaValue(ind Indicator) (float64, bool) {
	v, ok := r.Delta[ind]
	return v, ok
}

// ComparisonColumns lists the comparison columns for the tracked indicators:
// country, then {ind}_{baselineYear}, {ind}, {ind}_delta per indicator
func ComparisonColumns(inds []Indicator, baselineYear int) []string {
	cols := make([]string, 0, 1+3*len(inds))
	cols = append(cols, ColumnCountry)
	for _, ind := range inds {
		cols = append(cols, YearColumn(ind, baselineYear), string(ind), DeltaColumn(ind))
	}
	return cols
}

// Columns returns the flat column names and values of the row
func (r ComparisonRow) Columns() ([]string, []interface{}) {
	vals := []interface{}{r.Country}
	for _, ind := range r.Indicators {
		b, bok := r.Baseline[ind]
		p, pok := r.Predicted[ind]
		d, dok := r.Delta[ind]
		vals = append(vals, cell(b, bok), cell(p, pok), cell(d, dok))
	}
	return ComparisonColumns(r.Indicators, r.BaselineYear), vals
}

// MarshalJSON flattens the row into {indicator}_{year} / {indicator} / {indicator}_delta keys
func (r ComparisonRow) MarshalJSON() ([]byte, error) {
	cols, vals := r.Columns()
	out := make(map[string]interface{}, len(cols)+1)
	for i, c := range cols {
		out[c] = vals[i]
	}
	if r.Region != "" {
		out["region"] = r.Region
	}
	return json.Marshal(out)
}

// ComparisonRows is a comparison view
type ComparisonRows []ComparisonRow

// ToTable renders the view for export. The header comes from the tracked
// indicators so an empty view still has its columns.
func (rows ComparisonRows) ToTable(inds []Indicator, baselineYear int) Table {
	t := Table{Name: "comparison", Columns: ComparisonColumns(inds, baselineYear)}
	for _, r := range rows {
		_, vals := r.Columns()
		t.Rows = append(t.Rows, vals)
	}
	return t
}

// ------------------- Growth -------------------

// GrowthRow is one country's change in an indicator between two years
type GrowthRow struct {
	Country   string
	Indicator Indicator
	StartYear int
	EndYear   int
	Start     float64
	End       float64
	Growth    float64 // End - Start
}

// GrowthColumns lists the growth pivot columns
func GrowthColumns(ind Indicator, startYear, endYear int) []string {
	return []string{ColumnCountry, YearColumn(ind, startYear), YearColumn(ind, endYear), "growth"}
}

// Columns returns the flat column names and values of the row
func (r GrowthRow) Columns() ([]string, []interface{}) {
	return GrowthColumns(r.Indicator, r.StartYear, r.EndYear),
		[]interface{}{r.Country, r.Start, r.End, r.Growth}
}

// MarshalJSON flattens the row into {indicator}_{start} / {indicator}_{end} / growth keys
func (r GrowthRow) MarshalJSON() ([]byte, error) {
	cols, vals := r.Columns()
	out := make(map[string]interface{}, len(cols))
	for i, c := range cols {
		out[c] = vals[i]
	}
	return json.Marshal(out)
}

// GrowthRows is a growth pivot view
type GrowthRows []GrowthRow

// ToTable renders the view for export
func (rows GrowthRows) ToTable(ind Indicator, startYear, endYear int) Table {
	t := Table{Name: "growth", Columns: GrowthColumns(ind, startYear, endYear)}
	for _, r := range rows {
		_, vals := r.Columns()
		t.Rows = append(t.Rows, vals)
	}
	return t
}

// GrowthPair pairs two growth values of the same country
type GrowthPair struct {
	Country string  `json:"country"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// ------------------- Correlation -------------------

// CorrelationResult is a Pearson coefficient with its two-sided p-value
type CorrelationResult struct {
	Coefficient float64 `json:"coefficient"`
	PValue      float64 `json:"p_value"`
	N           int     `json:"n"`
}

// Trendline is an ordinary least squares fit y = Intercept + Slope*x
type Trendline struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// ScatterPoint is one country in a scatter view
type ScatterPoint struct {
	Country string  `json:"country"`
	Region  Region  `json:"region,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// CorrelationView is what the hypothesis pages render: points, coefficient and fit.
// Coefficient and PValue are nil when the correlation is not applicable.
type CorrelationView struct {
	X           string         `json:"x"`
	Y           string         `json:"y"`
	Label       string         `json:"label"` // e.g. "2020" or "2000-2020 growth"
	N           int            `json:"n"`
	Applicable  bool           `json:"applicable"`
	Reason      string         `json:"reason,omitempty"`
	Coefficient *float64       `json:"coefficient"`
	PValue      *float64       `json:"p_value"`
	Trendline   *Trendline     `json:"trendline,omitempty"`
	Points      []ScatterPoint `json:"points"`
}

// CorrelationMatrix holds pairwise coefficients; a nil cell is a degenerate pair
type CorrelationMatrix struct {
	Year       int          `json:"year"`
	Indicators []Indicator  `json:"indicators"`
	Values     [][]*float64 `json:"values"`
}

// ToTable renders the matrix for export
func (m CorrelationMatrix) ToTable() Table {
	t := Table{Name: "correlation_matrix", Columns: []string{"indicator"}}
	for _, ind := range m.Indicators {
		t.Columns = append(t.Columns, string(ind))
	}
	for i, ind := range m.Indicators {
		row := []interface{}{string(ind)}
		for _, v := range m.Values[i] {
			if v == nil {
				row = append(row, nil)
			} else {
				row = append(row, *v)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ------------------- Quartiles -------------------

// BucketLabel is the equal-frequency bucket one value falls into
type BucketLabel struct {
	Index    int    `json:"index"`    // 1-based
	Label    string `json:"label"`    // Q1..Qk
	Interval string `json:"interval"` // (lower, upper]
}

// QuartileAssignment is one country's bucket for an indicator
type QuartileAssignment struct {
	Country string  `json:"country"`
	Region  Region  `json:"region,omitempty"`
	Value   float64 `json:"value"`
	BucketLabel
}

// QuartileView lists bucket assignments together with the bucket edges
type QuartileView struct {
	Indicator   Indicator            `json:"indicator"`
	Year        int                  `json:"year"`
	K           int                  `json:"k"`
	Edges       []float64            `json:"edges"`
	Assignments []QuartileAssignment `json:"assignments"`
}

// ToTable renders the view for export
func (v QuartileView) ToTable() Table {
	t := Table{
		Name:    "quartiles",
		Columns: []string{ColumnCountry, "region", string(v.Indicator), "bucket", "label", "interval"},
	}
	for _, a := range v.Assignments {
		t.Rows = append(t.Rows, []interface{}{a.Country, string(a.Region), a.Value, a.Index, a.Label, a.Interval})
	}
	return t
}

// ------------------- Distribution -------------------

// BoxStats is the five-number summary of one group
type BoxStats struct {
	Group  string  `json:"group"`
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// HistogramBin counts values in [Lower, Upper); the last bin is closed
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Distribution backs the box plot and histogram views
type Distribution struct {
	Indicator Indicator      `json:"indicator"`
	Year      int            `json:"year"`
	Overall   BoxStats       `json:"overall"`
	Groups    []BoxStats     `json:"groups,omitempty"`
	Histogram []HistogramBin `json:"histogram"`
}

// ToTable renders the box statistics for export
func (d Distribution) ToTable() Table {
	t := Table{
		Name:    "distribution",
		Columns: []string{"group", "n", "min", "q1", "median", "q3", "max", "mean"},
	}
	for _, b := range append([]BoxStats{d.Overall}, d.Groups...) {
		t.Rows = append(t.Rows, []interface{}{b.Group, b.N, b.Min, b.Q1, b.Median, b.Q3, b.Max, b.Mean})
	}
	return t
}

// ------------------- Map / Series -------------------

// MapPoint is one country's value on the choropleth
type MapPoint struct {
	Country string  `json:"country"`
	Region  Region  `json:"region,omitempty"`
	Value   float64 `json:"value"`
}

// MapView is the choropleth for one indicator and year
type MapView struct {
	Indicator Indicator  `json:"indicator"`
	Year      int        `json:"year"`
	Predicted bool       `json:"predicted"`
	Points    []MapPoint `json:"points"`
}

// ToTable renders the view for export
func (v MapView) ToTable() Table {
	t := Table{Name: "map", Columns: []string{ColumnCountry, "region", string(v.Indicator)}}
	for _, p := range v.Points {
		t.Rows = append(t.Rows, []interface{}{p.Country, string(p.Region), p.Value})
	}
	return t
}

// SeriesPoint is one point of a per-country line over time
type SeriesPoint struct {
	Country string  `json:"country"`
	Year    int     `json:"year"`
	Value   float64 `json:"value"`
}

// ------------------- Country summary -------------------

// SummaryRow compares one indicator between two years for a country
type SummaryRow struct {
	Indicator     Indicator `json:"indicator"`
	From          *float64  `json:"from"`
	To            *float64  `json:"to"`
	PercentChange *float64  `json:"percent_change"` // nil when From is null or zero
}

// CountrySummary is the country overview table
type CountrySummary struct {
	Country  string       `json:"country"`
	Region   Region       `json:"region"`
	FromYear int          `json:"from_year"`
	ToYear   int          `json:"to_year"`
	Rows     []SummaryRow `json:"rows"`
}

// ToTable renders the view for export
func (s CountrySummary) ToTable() Table {
	t := Table{
		Name:    "summary",
		Columns: []string{"indicator", fmt.Sprint(s.FromYear), fmt.Sprint(s.ToYear), "percent_change"},
	}
	deref := func(p *float64) interface{} {
		if p == nil {
			return nil
		}
		return *p
	}
	for _, r := range s.Rows {
		t.Rows = append(t.Rows, []interface{}{string(r.Indicator), deref(r.From), deref(r.To), deref(r.PercentChange)})
	}
	return t
}

// ObservationsTable renders observation rows with the given indicator columns
func ObservationsTable(rows ObservationTable, inds []Indicator) Table {
	t := Table{Name: "observations", Columns: []string{ColumnCountry, ColumnYear, "region"}}
	for _, ind := range inds {
		t.Columns = append(t.Columns, string(ind))
	}
	for _, r := range rows {
		row := []interface{}{r.Country, r.Year, string(r.Region)}
		for _, ind := range inds {
			row = append(row, cell(r.Value(ind)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
