package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"sdg7-dashboard/internal/model"
)

var (
	// ErrDegenerateCorrelation marks a zero-variance series. Callers show
	// "not applicable" instead of a coefficient.
	ErrDegenerateCorrelation = errors.New("degenerate correlation: zero variance")
	ErrLengthMismatch        = errors.New("series lengths differ")
	ErrMissingValue          = errors.New("series contains a missing value")
	ErrInsufficientData      = errors.New("not enough data points")
	ErrInvalidBuckets        = errors.New("bucket count must be at least 1")
	ErrNonFiniteValue        = errors.New("series contains an infinite value")
)

// minCorrelationPoints is the smallest n with a defined p-value (n-2 degrees of freedom)
const minCorrelationPoints = 3

// ------------------- Correlation -------------------

// Correlate returns the Pearson coefficient of two paired series and its two-sided
// p-value under the null of no correlation (Student t with n-2 degrees of freedom).
// Series must be pre-cleaned: equal length, no NaN.
func Correlate(x, y []float64) (model.CorrelationResult, error) {
	if len(x) != len(y) {
		return model.CorrelationResult{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	if hasNaN(x) || hasNaN(y) {
		return model.CorrelationResult{}, ErrMissingValue
	}
	n := len(x)
	if n < minCorrelationPoints {
		return model.CorrelationResult{}, fmt.Errorf("%w: need %d, have %d", ErrInsufficientData, minCorrelationPoints, n)
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return model.CorrelationResult{}, ErrDegenerateCorrelation
	}

	r := stat.Correlation(x, y, nil)
	r = math.Max(-1, math.Min(1, r))

	return model.CorrelationResult{Coefficient: r, PValue: pValue(r, n), N: n}, nil
}

func pValue(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return math.Min(1, p)
}

// PairedValues returns a scatter point for every row where both indicators are non-null
func PairedValues(table model.ObservationTable, x, y model.Indicator) []model.ScatterPoint {
	points := make([]model.ScatterPoint, 0, len(table))
	for _, r := range table {
		xv, xok := r.Value(x)
		yv, yok := r.Value(y)
		if !xok || !yok {
			continue
		}
		points = append(points, model.ScatterPoint{Country: r.Country, Region: r.Region, X: xv, Y: yv})
	}
	return points
}

// Trendline fits y = intercept + slope*x by ordinary least squares
func Trendline(x, y []float64) (model.Trendline, error) {
	if len(x) != len(y) {
		return model.Trendline{}, ErrLengthMismatch
	}
	if len(x) < 2 {
		return model.Trendline{}, ErrInsufficientData
	}
	if stat.Variance(x, nil) == 0 {
		return model.Trendline{}, fmt.Errorf("trendline: %w", ErrDegenerateCorrelation)
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, alpha, beta)
	if math.IsNaN(r2) {
		r2 = 0
	}
	return model.Trendline{Slope: beta, Intercept: alpha, RSquared: r2}, nil
}

// BuildCorrelationView correlates scatter points. Degenerate or too small inputs
// produce a view with Applicable=false and no coefficient.
func BuildCorrelationView(points []model.ScatterPoint, x, y, label string) model.CorrelationView {
	v := model.CorrelationView{X: x, Y: y, Label: label, N: len(points), Points: points}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}

	res, err := Correlate(xs, ys)
	if err != nil {
		v.Reason = err.Error()
		return v
	}
	v.Applicable = true
	v.Coefficient = model.Float(res.Coefficient)
	v.PValue = model.Float(res.PValue)
	if fit, err := Trendline(xs, ys); err == nil {
		v.Trendline = &fit
	}
	return v
}

// CorrelationMatrix computes pairwise coefficients over one year. Each pair uses
// the rows where both indicators are non-null; degenerate pairs are nil.
func CorrelationMatrix(table model.ObservationTable, year int, inds []model.Indicator) model.CorrelationMatrix {
	rows := FilterByYear(table, year)
	m := model.CorrelationMatrix{Year: year, Indicators: inds, Values: make([][]*float64, len(inds))}
	for i := range inds {
		m.Values[i] = make([]*float64, len(inds))
	}
	for i := range inds {
		for j := i; j < len(inds); j++ {
			pts := PairedValues(rows, inds[i], inds[j])
			xs := make([]float64, len(pts))
			ys := make([]float64, len(pts))
			for k, p := range pts {
				xs[k], ys[k] = p.X, p.Y
			}
			res, err := Correlate(xs, ys)
			if err != nil {
				continue
			}
			m.Values[i][j] = model.Float(res.Coefficient)
			m.Values[j][i] = model.Float(res.Coefficient)
		}
	}
	return m
}

// ------------------- Quantile buckets -------------------

// QuantileEdges returns the k-1 inner cut points of an equal-frequency split,
// taken from the series' empirical quantiles: edge i is the smallest value whose
// empirical CDF reaches i/k.
func QuantileEdges(values []float64, k int) ([]float64, error) {
	if k < 1 {
		return nil, ErrInvalidBuckets
	}
	if hasNaN(values) {
		return nil, ErrMissingValue
	}
	if len(values) == 0 {
		return nil, nil
	}
	sorted := sortedCopy(values)
	edges := make([]float64, k-1)
	for i := 1; i < k; i++ {
		edges[i-1] = stat.Quantile(float64(i)/float64(k), stat.Empirical, sorted, nil)
	}
	return edges, nil
}

// QuartileBucket labels every value with its equal-frequency bucket Q1..Qk.
// Buckets are right-closed, so a value equal to an edge falls in the lower bucket.
func QuartileBucket(values []float64, k int) ([]model.BucketLabel, error) {
	edges, err := QuantileEdges(values, k)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []model.BucketLabel{}, nil
	}

	sorted := sortedCopy(values)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	labels := make([]model.BucketLabel, k)
	for i := range labels {
		lower, upper := lo, hi
		if i > 0 {
			lower = edges[i-1]
		}
		if i < k-1 {
			upper = edges[i]
		}
		interval := "(" + formatEdge(lower) + ", " + formatEdge(upper) + "]"
		if i == 0 {
			interval = "[" + formatEdge(lower) + ", " + formatEdge(upper) + "]"
		}
		labels[i] = model.BucketLabel{Index: i + 1, Label: "Q" + strconv.Itoa(i+1), Interval: interval}
	}

	out := make([]model.BucketLabel, len(values))
	for i, v := range values {
		// first edge >= v; sort.SearchFloat64s finds the first edge not less than v
		b := sort.SearchFloat64s(edges, v)
		out[i] = labels[b]
	}
	return out, nil
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// ------------------- Distribution -------------------

// Describe computes box statistics. Quartiles use the same empirical
// convention as QuartileBucket.
func Describe(values []float64, group string) (model.BoxStats, error) {
	if len(values) == 0 {
		return model.BoxStats{}, ErrInsufficientData
	}
	if hasNaN(values) {
		return model.BoxStats{}, ErrMissingValue
	}
	sorted := sortedCopy(values)
	return model.BoxStats{
		Group:  group,
		N:      len(sorted),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(sorted, nil),
	}, nil
}

// DescribeByRegion computes box statistics per region, Unknown included,
// ordered by region name.
func DescribeByRegion(points []model.MapPoint) []model.BoxStats {
	groups := make(map[model.Region][]float64)
	for _, p := range points {
		r := p.Region
		if r == "" {
			r = model.RegionUnknown
		}
		groups[r] = append(groups[r], p.Value)
	}
	names := make([]string, 0, len(groups))
	for r := range groups {
		names = append(names, string(r))
	}
	sort.Strings(names)

	out := make([]model.BoxStats, 0, len(names))
	for _, name := range names {
		b, err := Describe(groups[model.Region(name)], name)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Histogram counts values into equal-width bins spanning [min, max].
// Bins are [lower, upper) except the last, which also holds max.
func Histogram(values []float64, bins int) ([]model.HistogramBin, error) {
	if bins < 1 {
		return nil, ErrInvalidBuckets
	}
	if hasNaN(values) {
		return nil, ErrMissingValue
	}
	if len(values) == 0 {
		return []model.HistogramBin{}, nil
	}
	sorted := sortedCopy(values)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, ErrNonFiniteValue
	}
	if lo == hi {
		return []model.HistogramBin{{Lower: lo, Upper: hi, Count: len(sorted)}}, nil
	}

	width := (hi - lo) / float64(bins)
	wide := math.IsInf(width, 0) || math.IsInf(lo+float64(bins)*width, 0)
	dividers := make([]float64, bins+1)
	for i := range dividers {
		if wide {
			// hi-lo overflows, interpolate between the ends instead
			t := float64(i) / float64(bins)
			dividers[i] = lo*(1-t) + hi*t
		} else {
			dividers[i] = lo + float64(i)*width
		}
		if i > 0 && dividers[i] <= dividers[i-1] {
			dividers[i] = math.Nextafter(dividers[i-1], math.Inf(1))
		}
	}
	// stat.Histogram treats the last divider as exclusive
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]model.HistogramBin, bins)
	for i := range out {
		upper := dividers[i+1]
		if i == bins-1 {
			upper = hi
		}
		out[i] = model.HistogramBin{Lower: dividers[i], Upper: upper, Count: int(counts[i])}
	}
	return out, nil
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
