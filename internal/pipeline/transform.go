package pipeline

import (
	"sort"

	"sdg7-dashboard/internal/model"
)

// RegionLookup resolves a country to its region; a miss is not an error
type RegionLookup interface {
	Lookup(country string) (model.Region, bool)
}

// ------------------- Filters -------------------

// FilterByYear returns the rows of the given year. No match is an empty table.
func FilterByYear(table model.ObservationTable, year int) model.ObservationTable {
	out := make(model.ObservationTable, 0, len(table)/(model.MaxYear-model.MinYear+1)+1)
	for _, r := range table {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// FilterCountries keeps rows of the listed countries. An empty list keeps every row.
func FilterCountries(table model.ObservationTable, countries []string) model.ObservationTable {
	if len(countries) == 0 {
		out := make(model.ObservationTable, len(table))
		copy(out, table)
		return out
	}
	want := toSet(countries)
	out := make(model.ObservationTable, 0)
	for _, r := range table {
		if want[r.Country] {
			out = append(out, r)
		}
	}
	return out
}

// ------------------- Region assignment -------------------

// AssignRegion returns a copy of table with Region set from the lookup.
// Countries the lookup does not know keep an empty region and group as Unknown.
func AssignRegion(table model.ObservationTable, lookup RegionLookup) model.ObservationTable {
	out := make(model.ObservationTable, len(table))
	for i, r := range table {
		region, _ := lookup.Lookup(r.Country)
		r.Region = region
		out[i] = r
	}
	return out
}

// ------------------- Series -------------------

// CountrySeries returns one point per (country, year) with a non-null value,
// ordered by country then year.
func CountrySeries(table model.ObservationTable, ind model.Indicator, countries []string) []model.SeriesPoint {
	rows := FilterCountries(table, countries)
	points := make([]model.SeriesPoint, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Value(ind); ok {
			points = append(points, model.SeriesPoint{Country: r.Country, Year: r.Year, Value: v})
		}
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Country != points[j].Country {
			return points[i].Country < points[j].Country
		}
		return points[i].Year < points[j].Year
	})
	return points
}

// Difference computes a - b per row, skipping rows where either is null
func Difference(table model.ObservationTable, a, b model.Indicator) []model.MapPoint {
	out := make([]model.MapPoint, 0, len(table))
	for _, r := range table {
		av, aok := r.Value(a)
		bv, bok := r.Value(b)
		if !aok || !bok {
			continue
		}
		out = append(out, model.MapPoint{Country: r.Country, Region: r.Region, Value: av - bv})
	}
	return out
}

// IndicatorValues returns the non-null values of an indicator with their country
func IndicatorValues(table model.ObservationTable, ind model.Indicator) []model.MapPoint {
	out := make([]model.MapPoint, 0, len(table))
	for _, r := range table {
		if v, ok := r.Value(ind); ok {
			out = append(out, model.MapPoint{Country: r.Country, Region: r.Region, Value: v})
		}
	}
	return out
}

// Values extracts the numbers of a point list
func Values(points []model.MapPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// ------------------- Catalog -------------------

// Countries lists the distinct countries of a table, sorted
func Countries(table model.ObservationTable) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range table {
		if !seen[r.Country] {
			seen[r.Country] = true
			out = append(out, r.Country)
		}
	}
	sort.Strings(out)
	return out
}

// Years lists the distinct years of a table, ascending
func Years(table model.ObservationTable) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range table {
		if !seen[r.Year] {
			seen[r.Year] = true
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
