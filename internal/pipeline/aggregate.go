package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"sdg7-dashboard/internal/model"
)

// ErrUnknownCountry is returned when a country has no historical rows
var ErrUnknownCountry = errors.New("unknown country")

// ------------------- Comparison -------------------

// BuildComparison joins the baseline-year observations with the 2030 predictions.
// Indicator columns of the baseline side are read as {indicator}_{baselineYear}.
// The join is inner on country: countries missing from either side are dropped.
// Rows keep the input order of the baseline rows; sort with SortComparison.
// tracked defaults to model.PredictedIndicators.
func BuildComparison(observations model.ObservationTable, predictions model.PredictionTable, baselineYear int, tracked []model.Indicator) model.ComparisonRows {
	if len(tracked) == 0 {
		tracked = model.PredictedIndicators
	}

	byCountry := make(map[string]model.PredictionRecord, len(predictions))
	for _, p := range predictions {
		byCountry[p.Country] = p
	}

	baseline := FilterByYear(observations, baselineYear)
	rows := make(model.ComparisonRows, 0, len(baseline))
	for _, obs := range baseline {
		pred, ok := byCountry[obs.Country]
		if !ok {
			continue
		}
		row := model.ComparisonRow{
			Country:      obs.Country,
			Region:       obs.Region,
			BaselineYear: baselineYear,
			Indicators:   tracked,
			Baseline:     make(map[model.Indicator]float64, len(tracked)),
			Predicted:    make(map[model.Indicator]float64, len(tracked)),
			Delta:        make(map[model.Indicator]float64, len(tracked)),
		}
		for _, ind := range tracked {
			b, bok := obs.Value(ind)
			p, pok := pred.Value(ind)
			if bok {
				row.Baseline[ind] = b
			}
			if pok {
				row.Predicted[ind] = p
			}
			if bok && pok {
				row.Delta[ind] = p - b
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// SortComparison orders rows by the delta of one indicator. Rows without a delta
// go last in either direction; ties keep their input order.
func SortComparison(rows model.ComparisonRows, ind model.Indicator, descending bool) model.ComparisonRows {
	out := make(model.ComparisonRows, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i].DeltaValue(ind)
		b, bok := out[j].DeltaValue(ind)
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		if descending {
			return a > b
		}
		return a < b
	})
	return out
}

// TopN returns at most n leading rows; n <= 0 returns all of them
func TopN(rows model.ComparisonRows, n int) model.ComparisonRows {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// ComparisonForCountries keeps the rows of the listed countries; an empty list keeps all
func ComparisonForCountries(rows model.ComparisonRows, countries []string) model.ComparisonRows {
	if len(countries) == 0 {
		return rows
	}
	want := toSet(countries)
	out := make(model.ComparisonRows, 0, len(countries))
	for _, r := range rows {
		if want[r.Country] {
			out = append(out, r)
		}
	}
	return out
}

// ------------------- Growth -------------------

// ComputeGrowthPivot pivots an indicator into start and end year values per
// country and computes growth = end - start. Countries without a non-null value
// in both years are excluded. Rows are ordered by country.
func ComputeGrowthPivot(observations model.ObservationTable, startYear, endYear int, ind model.Indicator) model.GrowthRows {
	starts := make(map[string]float64)
	ends := make(map[string]float64)
	for _, r := range observations {
		v, ok := r.Value(ind)
		if !ok {
			continue
		}
		switch r.Year {
		case startYear:
			starts[r.Country] = v
		case endYear:
			ends[r.Country] = v
		}
	}

	rows := make(model.GrowthRows, 0, len(starts))
	for country, s := range starts {
		e, ok := ends[country]
		if !ok {
			continue
		}
		rows = append(rows, model.GrowthRow{
			Country:   country,
			Indicator: ind,
			StartYear: startYear,
			EndYear:   endYear,
			Start:     s,
			End:       e,
			Growth:    e - s,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Country < rows[j].Country })
	return rows
}

// JoinGrowth pairs two growth pivots on country, keeping countries present in both
func JoinGrowth(x, y model.GrowthRows) []model.GrowthPair {
	byCountry := make(map[string]float64, len(y))
	for _, r := range y {
		byCountry[r.Country] = r.Growth
	}
	out := make([]model.GrowthPair, 0, len(x))
	for _, r := range x {
		if g, ok := byCountry[r.Country]; ok {
			out = append(out, model.GrowthPair{Country: r.Country, X: r.Growth, Y: g})
		}
	}
	return out
}

// GrowthScatter turns growth pairs into scatter points with regions
func GrowthScatter(pairs []model.GrowthPair, lookup RegionLookup) []model.ScatterPoint {
	out := make([]model.ScatterPoint, len(pairs))
	for i, p := range pairs {
		region, _ := lookup.Lookup(p.Country)
		out[i] = model.ScatterPoint{Country: p.Country, Region: region, X: p.X, Y: p.Y}
	}
	return out
}

// ------------------- Country summary -------------------

// CountrySummary compares a country's indicators between two years.
// Percent change is (to - from) / from * 100 rounded to two decimals, and null
// when either side is null or from is zero.
func CountrySummary(observations model.ObservationTable, lookup RegionLookup, country string, fromYear, toYear int, inds []model.Indicator) (model.CountrySummary, error) {
	var from, to *model.ObservationRecord
	found := false
	for i := range observations {
		r := &observations[i]
		if r.Country != country {
			continue
		}
		found = true
		switch r.Year {
		case fromYear:
			from = r
		case toYear:
			to = r
		}
	}
	if !found {
		return model.CountrySummary{}, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}

	region, ok := lookup.Lookup(country)
	if !ok {
		region = model.RegionUnknown
	}
	s := model.CountrySummary{Country: country, Region: region, FromYear: fromYear, ToYear: toYear}

	value := func(r *model.ObservationRecord, ind model.Indicator) *float64 {
		if r == nil {
			return nil
		}
		if v, ok := r.Value(ind); ok {
			return model.Float(v)
		}
		return nil
	}
	for _, ind := range inds {
		row := model.SummaryRow{Indicator: ind, From: value(from, ind), To: value(to, ind)}
		if row.From != nil && row.To != nil && *row.From != 0 {
			pct := (*row.To - *row.From) / *row.From * 100
			row.PercentChange = model.Float(math.Round(pct*100) / 100)
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

// ------------------- Map -------------------

// MapValues returns one value per country for the choropleth. The projection
// year reads the prediction table, any other year the historical table.
func MapValues(observations model.ObservationTable, predictions model.PredictionTable, lookup RegionLookup, ind model.Indicator, year int) model.MapView {
	v := model.MapView{Indicator: ind, Year: year, Predicted: year == model.PredictionYear}
	if v.Predicted {
		for _, p := range predictions {
			if val, ok := p.Value(ind); ok {
				region, _ := lookup.Lookup(p.Country)
				v.Points = append(v.Points, model.MapPoint{Country: p.Country, Region: region, Value: val})
			}
		}
	} else {
		for _, r := range FilterByYear(observations, year) {
			if val, ok := r.Value(ind); ok {
				region, _ := lookup.Lookup(r.Country)
				v.Points = append(v.Points, model.MapPoint{Country: r.Country, Region: region, Value: val})
			}
		}
	}
	if v.Points == nil {
		v.Points = []model.MapPoint{}
	}
	return v
}

// ------------------- Quartiles / Distribution -------------------

// BuildQuartileView buckets one indicator of a year's rows into k equal-frequency groups
func BuildQuartileView(observations model.ObservationTable, ind model.Indicator, year, k int) (model.QuartileView, error) {
	points := IndicatorValues(FilterByYear(observations, year), ind)
	values := Values(points)

	labels, err := QuartileBucket(values, k)
	if err != nil {
		return model.QuartileView{}, err
	}
	edges, err := QuantileEdges(values, k)
	if err != nil {
		return model.QuartileView{}, err
	}

	v := model.QuartileView{Indicator: ind, Year: year, K: k, Edges: edges, Assignments: make([]model.QuartileAssignment, len(points))}
	if v.Edges == nil {
		v.Edges = []float64{}
	}
	for i, p := range points {
		v.Assignments[i] = model.QuartileAssignment{Country: p.Country, Region: p.Region, Value: p.Value, BucketLabel: labels[i]}
	}
	return v, nil
}

// BuildDistribution computes box statistics and a histogram for one indicator of a year
func BuildDistribution(observations model.ObservationTable, ind model.Indicator, year, bins int, byRegion bool) (model.Distribution, error) {
	points := IndicatorValues(FilterByYear(observations, year), ind)
	values := Values(points)

	overall, err := Describe(values, "all")
	if err != nil {
		return model.Distribution{}, fmt.Errorf("%s %d: %w", ind, year, err)
	}
	hist, err := Histogram(values, bins)
	if err != nil {
		return model.Distribution{}, err
	}
	d := model.Distribution{Indicator: ind, Year: year, Overall: overall, Histogram: hist}
	if byRegion {
		d.Groups = DescribeByRegion(points)
	}
	return d, nil
}
