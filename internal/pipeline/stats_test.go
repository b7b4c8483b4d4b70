package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdg7-dashboard/internal/model"
)

func series(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestCorrelateSelf(t *testing.T) {
	x := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	res, err := Correlate(x, x)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Coefficient, 1e-12)
	assert.InDelta(t, 0.0, res.PValue, 1e-9)
	assert.Equal(t, len(x), res.N)
}

func TestCorrelateNegative(t *testing.T) {
	x := series(20)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 100 - 2*v
	}
	res, err := Correlate(x, y)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, res.Coefficient, 1e-12)
	assert.GreaterOrEqual(t, res.Coefficient, -1.0)
}

func TestCorrelateKnownValue(t *testing.T) {
	// r = 0.8, n = 5: t = 0.8*sqrt(3/0.36) = 2.3094, two-sided p = 0.1041
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 3, 2, 5, 4}
	res, err := Correlate(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, res.Coefficient, 1e-12)
	assert.InDelta(t, 0.1041, res.PValue, 1e-3)
}

func TestCorrelateErrors(t *testing.T) {
	_, err := Correlate([]float64{1, 2, 3}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Correlate([]float64{1, math.NaN(), 3}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrMissingValue)

	_, err = Correlate([]float64{1, 2}, []float64{2, 1})
	assert.ErrorIs(t, err, ErrInsufficientData)

	// zero variance is signalled, not returned as 0 or NaN
	res, err := Correlate([]float64{5, 5, 5, 5}, []float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrDegenerateCorrelation)
	assert.Equal(t, model.CorrelationResult{}, res)

	_, err = Correlate([]float64{1, 2, 3, 4}, []float64{7, 7, 7, 7})
	assert.ErrorIs(t, err, ErrDegenerateCorrelation)
}

func TestPairedValues(t *testing.T) {
	table := model.ObservationTable{
		record("A", 2020, map[model.Indicator]float64{model.GDPPerCapita: 1, model.AccessToCleanFuels: 10}),
		record("B", 2020, map[model.Indicator]float64{model.GDPPerCapita: 2}),
		record("C", 2020, map[model.Indicator]float64{model.AccessToCleanFuels: 30}),
	}
	points := PairedValues(table, model.GDPPerCapita, model.AccessToCleanFuels)
	require.Len(t, points, 1)
	assert.Equal(t, model.ScatterPoint{Country: "A", X: 1, Y: 10}, points[0])
}

func TestTrendline(t *testing.T) {
	x := series(10)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3 + 2*v
	}
	fit, err := Trendline(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 3.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)

	_, err = Trendline([]float64{2, 2, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDegenerateCorrelation)
	_, err = Trendline([]float64{1}, []float64{1})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestBuildCorrelationView(t *testing.T) {
	points := []model.ScatterPoint{{Country: "A", X: 1, Y: 2}, {Country: "B", X: 2, Y: 4}, {Country: "C", X: 3, Y: 6.5}}
	v := BuildCorrelationView(points, "x", "y", "2020")
	assert.True(t, v.Applicable)
	require.NotNil(t, v.Coefficient)
	require.NotNil(t, v.PValue)
	require.NotNil(t, v.Trendline)
	assert.Equal(t, 3, v.N)

	flat := []model.ScatterPoint{{X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}}
	v = BuildCorrelationView(flat, "x", "y", "2020")
	assert.False(t, v.Applicable)
	assert.Nil(t, v.Coefficient)
	assert.Nil(t, v.PValue)
	assert.Nil(t, v.Trendline)
	assert.Contains(t, v.Reason, "zero variance")
}

func TestCorrelationMatrix(t *testing.T) {
	table := model.ObservationTable{}
	for i := 1; i <= 5; i++ {
		table = append(table, record("C"+string(rune('A'+i)), 2020, map[model.Indicator]float64{
			model.AccessToElectricity: float64(i),
			model.GDPPerCapita:        float64(i * i),
			model.EnergyIntensity:     4,
		}))
	}
	inds := []model.Indicator{model.AccessToElectricity, model.GDPPerCapita, model.EnergyIntensity}

	m := CorrelationMatrix(table, 2020, inds)
	require.Len(t, m.Values, 3)
	assert.InDelta(t, 1.0, *m.Values[0][0], 1e-12)
	assert.InDelta(t, 1.0, *m.Values[1][1], 1e-12)
	assert.Equal(t, *m.Values[0][1], *m.Values[1][0])
	assert.Nil(t, m.Values[2][2], "constant column is degenerate")
	assert.Nil(t, m.Values[0][2])

	tbl := m.ToTable()
	assert.Equal(t, []string{"indicator", "access_to_electricity", "gdp_per_capita", "energy_intensity"}, tbl.Columns)
	assert.Nil(t, tbl.Rows[2][3])
}

func TestQuartileBucketUniform(t *testing.T) {
	values := series(100)
	labels, err := QuartileBucket(values, 4)
	require.NoError(t, err)
	require.Len(t, labels, 100)

	counts := map[string]int{}
	for _, l := range labels {
		counts[l.Label]++
	}
	assert.Equal(t, map[string]int{"Q1": 25, "Q2": 25, "Q3": 25, "Q4": 25}, counts)

	edges, err := QuantileEdges(values, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 50, 75}, edges)

	// right-closed: the edge value itself is in the lower bucket
	assert.Equal(t, "Q1", labels[24].Label)
	assert.Equal(t, "Q2", labels[25].Label)
	assert.Equal(t, "[1, 25]", labels[0].Interval)
	assert.Equal(t, "(75, 100]", labels[99].Interval)
}

func TestQuartileBucketUnsortedInput(t *testing.T) {
	values := []float64{40, 10, 30, 20}
	labels, err := QuartileBucket(values, 4)
	require.NoError(t, err)
	assert.Equal(t, "Q4", labels[0].Label)
	assert.Equal(t, "Q1", labels[1].Label)
	assert.Equal(t, "Q3", labels[2].Label)
	assert.Equal(t, "Q2", labels[3].Label)
	assert.Equal(t, 4, labels[0].Index)
}

func TestQuartileBucketTies(t *testing.T) {
	// edges are 1, 1, 2: ties at an edge go to the lowest bucket reaching it
	values := []float64{1, 1, 1, 1, 2, 3}
	labels, err := QuartileBucket(values, 4)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.Equal(t, "Q1", labels[i].Label)
	}
	assert.Equal(t, "Q3", labels[4].Label)
	assert.Equal(t, "Q4", labels[5].Label)
}

func TestQuartileBucketEdgeCases(t *testing.T) {
	labels, err := QuartileBucket(nil, 4)
	require.NoError(t, err)
	assert.Empty(t, labels)

	_, err = QuartileBucket([]float64{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidBuckets)

	_, err = QuartileBucket([]float64{1, math.NaN()}, 4)
	assert.ErrorIs(t, err, ErrMissingValue)

	labels, err = QuartileBucket([]float64{5, 6}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Q1", labels[1].Label)
}

func TestDescribe(t *testing.T) {
	b, err := Describe([]float64{5, 1, 4, 2, 3}, "all")
	require.NoError(t, err)
	assert.Equal(t, model.BoxStats{Group: "all", N: 5, Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 5, Mean: 3}, b)

	_, err = Describe(nil, "all")
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDescribeByRegion(t *testing.T) {
	points := []model.MapPoint{
		{Country: "A", Region: model.RegionEurope, Value: 1},
		{Country: "B", Region: model.RegionEurope, Value: 3},
		{Country: "Atlantis", Value: 7},
		{Country: "C", Region: model.RegionAfrica, Value: 2},
	}
	groups := DescribeByRegion(points)
	require.Len(t, groups, 3)
	assert.Equal(t, "Africa", groups[0].Group)
	assert.Equal(t, "Europe", groups[1].Group)
	assert.Equal(t, 2, groups[1].N)
	assert.Equal(t, "Unknown", groups[2].Group)
}

func TestHistogram(t *testing.T) {
	bins, err := Histogram(series(10), 3)
	require.NoError(t, err)
	require.Len(t, bins, 3)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 1.0, bins[0].Lower)
	assert.Equal(t, 10.0, bins[2].Upper)
	assert.Equal(t, 4, bins[2].Count, "max lands in the last bin")

	single, err := Histogram([]float64{2, 2, 2}, 5)
	require.NoError(t, err)
	assert.Equal(t, []model.HistogramBin{{Lower: 2, Upper: 2, Count: 3}}, single)

	_, err = Histogram(series(3), 0)
	assert.ErrorIs(t, err, ErrInvalidBuckets)
}

func TestHistogramWideRange(t *testing.T) {
	var bins []model.HistogramBin
	var err error
	require.NotPanics(t, func() {
		bins, err = Histogram([]float64{-1e308, 0, 1e308}, 10)
	})
	require.NoError(t, err)
	require.Len(t, bins, 10)

	total := 0
	for i, b := range bins {
		total += b.Count
		assert.False(t, math.IsNaN(b.Lower) || math.IsInf(b.Lower, 0), "bin %d lower", i)
		assert.Less(t, b.Lower, b.Upper, "bin %d", i)
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, -1e308, bins[0].Lower)
	assert.Equal(t, 1e308, bins[9].Upper)
	assert.Equal(t, 1, bins[0].Count)
	assert.Equal(t, 1, bins[9].Count)

	_, err = Histogram([]float64{1, math.Inf(1)}, 4)
	assert.ErrorIs(t, err, ErrNonFiniteValue)
}
