package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdg7-dashboard/internal/model"
)

func TestBuildComparisonScenario(t *testing.T) {
	observations := model.ObservationTable{
		record("A", 2020, map[model.Indicator]float64{model.AccessToElectricity: 50}),
		record("B", 2020, map[model.Indicator]float64{model.AccessToElectricity: 80}),
	}
	predictions := model.PredictionTable{
		{Country: "A", Values: map[model.Indicator]float64{model.AccessToElectricity: 70}},
		{Country: "B", Values: map[model.Indicator]float64{model.AccessToElectricity: 75}},
	}

	rows := BuildComparison(observations, predictions, 2020, []model.Indicator{model.AccessToElectricity})
	require.Len(t, rows, 2)

	deltaA, ok := rows[0].DeltaValue(model.AccessToElectricity)
	require.True(t, ok)
	assert.Equal(t, 20.0, deltaA)
	deltaB, ok := rows[1].DeltaValue(model.AccessToElectricity)
	require.True(t, ok)
	assert.Equal(t, -5.0, deltaB)

	sorted := SortComparison(rows, model.AccessToElectricity, true)
	assert.Equal(t, "A", sorted[0].Country)
	assert.Equal(t, "B", sorted[1].Country)

	asc := SortComparison(rows, model.AccessToElectricity, false)
	assert.Equal(t, "B", asc[0].Country)

	cols, vals := rows[0].Columns()
	assert.Equal(t, []string{"country", "access_to_electricity_2020", "access_to_electricity", "access_to_electricity_delta"}, cols)
	assert.Equal(t, []interface{}{"A", 50.0, 70.0, 20.0}, vals)
}

func TestBuildComparisonJoinGap(t *testing.T) {
	ds := loadFixtures(t)

	baseline := FilterByYear(ds.Observations, 2020)
	rows := BuildComparison(ds.Observations, ds.Predictions, 2020, nil)

	assert.LessOrEqual(t, len(rows), min(len(baseline), len(ds.Predictions)))
	countries := map[string]bool{}
	for _, r := range rows {
		countries[r.Country] = true
	}
	assert.True(t, countries["India"])
	assert.True(t, countries["Germany"])
	assert.False(t, countries["Narnia"], "prediction without history")
	assert.False(t, countries["Atlantis"], "history without prediction")
}

func TestBuildComparisonNullCells(t *testing.T) {
	observations := model.ObservationTable{
		record("A", 2020, map[model.Indicator]float64{model.AccessToElectricity: 50}),
	}
	predictions := model.PredictionTable{
		{Country: "A", Values: map[model.Indicator]float64{model.AccessToElectricity: 70, model.CO2EmissionsKt: 10}},
	}

	rows := BuildComparison(observations, predictions, 2020, nil)
	require.Len(t, rows, 1)
	_, ok := rows[0].DeltaValue(model.CO2EmissionsKt)
	assert.False(t, ok, "no delta without a baseline value")
	assert.Equal(t, 10.0, rows[0].Predicted[model.CO2EmissionsKt])
}

func TestSortComparisonMissingDeltaLast(t *testing.T) {
	rows := model.ComparisonRows{
		{Country: "none", Delta: map[model.Indicator]float64{}},
		{Country: "low", Delta: map[model.Indicator]float64{model.AccessToElectricity: 1}},
		{Country: "high", Delta: map[model.Indicator]float64{model.AccessToElectricity: 9}},
	}
	for _, desc := range []bool{true, false} {
		sorted := SortComparison(rows, model.AccessToElectricity, desc)
		assert.Equal(t, "none", sorted[2].Country)
	}
	assert.Equal(t, "none", rows[0].Country, "input is not reordered")
}

func TestTopNAndCountries(t *testing.T) {
	rows := model.ComparisonRows{{Country: "A"}, {Country: "B"}, {Country: "C"}}
	assert.Len(t, TopN(rows, 2), 2)
	assert.Len(t, TopN(rows, 0), 3)
	assert.Len(t, TopN(rows, 10), 3)

	picked := ComparisonForCountries(rows, []string{"C", "A"})
	require.Len(t, picked, 2)
	assert.Equal(t, "A", picked[0].Country)
}

func TestComputeGrowthPivot(t *testing.T) {
	ds := loadFixtures(t)

	rows := ComputeGrowthPivot(ds.Observations, 2000, 2020, model.CO2EmissionsKt)
	require.Len(t, rows, 2, "Germany lacks 2000, Atlantis has a null")

	assert.Equal(t, "India", rows[0].Country)
	assert.Equal(t, 2200000.0-980000.0, rows[0].Growth)
	assert.Equal(t, "Kenya", rows[1].Country)
	for _, r := range rows {
		assert.Equal(t, r.End-r.Start, r.Growth)
	}

	cols, _ := rows[0].Columns()
	assert.Equal(t, []string{"country", "co2_emissions_kt_2000", "co2_emissions_kt_2020", "growth"}, cols)
}

func TestJoinGrowth(t *testing.T) {
	x := model.GrowthRows{{Country: "A", Growth: 1}, {Country: "B", Growth: 2}}
	y := model.GrowthRows{{Country: "B", Growth: 20}, {Country: "C", Growth: 30}}

	pairs := JoinGrowth(x, y)
	require.Len(t, pairs, 1)
	assert.Equal(t, model.GrowthPair{Country: "B", X: 2, Y: 20}, pairs[0])

	points := GrowthScatter(pairs, stubLookup{"B": model.RegionEurope})
	assert.Equal(t, model.RegionEurope, points[0].Region)
}

func TestCountrySummary(t *testing.T) {
	observations := model.ObservationTable{
		record("A", 2000, map[model.Indicator]float64{model.AccessToElectricity: 40, model.GDPPerCapita: 0}),
		record("A", 2020, map[model.Indicator]float64{model.AccessToElectricity: 50, model.GDPPerCapita: 100, model.CO2EmissionsKt: 3}),
	}
	lookup := stubLookup{"A": model.RegionAfrica}

	s, err := CountrySummary(observations, lookup, "A", 2000, 2020,
		[]model.Indicator{model.AccessToElectricity, model.GDPPerCapita, model.CO2EmissionsKt})
	require.NoError(t, err)
	assert.Equal(t, model.RegionAfrica, s.Region)
	require.Len(t, s.Rows, 3)

	require.NotNil(t, s.Rows[0].PercentChange)
	assert.Equal(t, 25.0, *s.Rows[0].PercentChange)
	assert.Nil(t, s.Rows[1].PercentChange, "zero start value")
	assert.Nil(t, s.Rows[2].From)
	assert.Nil(t, s.Rows[2].PercentChange, "missing start value")

	_, err = CountrySummary(observations, lookup, "Atlantis", 2000, 2020, model.CoreIndicators)
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestCountrySummaryRounding(t *testing.T) {
	observations := model.ObservationTable{
		record("A", 2000, map[model.Indicator]float64{model.AccessToElectricity: 3}),
		record("A", 2020, map[model.Indicator]float64{model.AccessToElectricity: 4}),
	}
	s, err := CountrySummary(observations, stubLookup{}, "A", 2000, 2020, []model.Indicator{model.AccessToElectricity})
	require.NoError(t, err)
	assert.Equal(t, 33.33, *s.Rows[0].PercentChange)
	assert.Equal(t, model.RegionUnknown, s.Region)
}

func TestMapValues(t *testing.T) {
	ds := loadFixtures(t)
	lookup := stubLookup{"India": model.RegionAsia}

	hist := MapValues(ds.Observations, ds.Predictions, lookup, model.AccessToElectricity, 2000)
	assert.False(t, hist.Predicted)
	assert.Len(t, hist.Points, 2)

	future := MapValues(ds.Observations, ds.Predictions, lookup, model.AccessToElectricity, model.PredictionYear)
	assert.True(t, future.Predicted)
	require.Len(t, future.Points, 4)
	assert.Equal(t, model.MapPoint{Country: "India", Region: model.RegionAsia, Value: 100}, future.Points[0])

	empty := MapValues(ds.Observations, ds.Predictions, lookup, model.AccessToElectricity, 2010)
	assert.NotNil(t, empty.Points)
	assert.Empty(t, empty.Points)
}

func TestBuildDistribution(t *testing.T) {
	ds := loadFixtures(t)
	observations := AssignRegion(ds.Observations, stubLookup{"India": model.RegionAsia, "Kenya": model.RegionAfrica, "Germany": model.RegionEurope})

	d, err := BuildDistribution(observations, model.CO2EmissionsKt, 2020, 5, true)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Overall.N)
	assert.Len(t, d.Histogram, 5)
	require.Len(t, d.Groups, 3)
	assert.Equal(t, "Africa", d.Groups[0].Group)

	_, err = BuildDistribution(observations, model.CO2EmissionsKt, 2010, 5, false)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
