package model

import (
	"sort"
	"time"
)

// Indicator is the name of a numeric column tracked per country per year
type Indicator string

const (
	AccessToElectricity        Indicator = "access_to_electricity"
	AccessToCleanFuels         Indicator = "access_to_clean_fuels"
	RenewableCapacityPerCapita Indicator = "renewable_capacity_per_capita"
	RenewableEnergyShare       Indicator = "renewable_energy_share"
	FossilElectricity          Indicator = "fossil_electricity"
	EnergyIntensity            Indicator = "energy_intensity"
	CO2EmissionsKt             Indicator = "co2_emissions_kt"
	GDPPerCapita               Indicator = "gdp_per_capita"
)

// Column names shared by both input files
const (
	ColumnCountry = "country"
	ColumnYear    = "year"
)

// Year bounds of the historical table and the projection year of the prediction table
const (
	MinYear        = 2000
	MaxYear        = 2020
	PredictionYear = 2030
)

// CoreIndicators must be present as columns in the historical table.
var CoreIndicators = []Indicator{
	AccessToElectricity,
	AccessToCleanFuels,
	RenewableCapacityPerCapita,
	RenewableEnergyShare,
	FossilElectricity,
	EnergyIntensity,
	CO2EmissionsKt,
	GDPPerCapita,
}

// PredictedIndicators must be present as columns in the prediction table.
var PredictedIndicators = []Indicator{
	AccessToElectricity,
	AccessToCleanFuels,
	CO2EmissionsKt,
}

// Region is a continent-level grouping used to group and color visuals
type Region string

const (
	RegionAfrica       Region = "Africa"
	RegionAsia         Region = "Asia"
	RegionEurope       Region = "Europe"
	RegionNorthAmerica Region = "North America"
	RegionSouthAmerica Region = "South America"
	RegionOceania      Region = "Oceania"

	// RegionUnknown is the group key for rows with no region assignment.
	RegionUnknown Region = "Unknown"
)

// ObservationRecord is one country's indicator snapshot for one year.
// A missing key in Values is a null cell. Values is shared between copies
// of the record and must never be written after load.
type ObservationRecord struct {
	Country string                `json:"country"`
	Year    int                   `json:"year"`
	Region  Region                `json:"region,omitempty"` // empty until AssignRegion
	Values  map[Indicator]float64 `json:"values"`
}

// Value returns the indicator value and whether it is non-null
func (r ObservationRecord) Value(ind Indicator) (float64, bool) {
	v, ok := r.Values[ind]
	return v, ok
}

// RegionOrUnknown returns the assigned region or RegionUnknown
func (r ObservationRecord) RegionOrUnknown() Region {
	if r.Region == "" {
		return RegionUnknown
	}
	return r.Region
}

// PredictionRecord holds the projected 2030 values for one country
type PredictionRecord struct {
	Country string                `json:"country"`
	Values  map[Indicator]float64 `json:"values"`
}

// Value returns the predicted value and whether it is non-null
func (r PredictionRecord) Value(ind Indicator) (float64, bool) {
	v, ok := r.Values[ind]
	return v, ok
}

// ObservationTable is the historical table in file order
type ObservationTable []ObservationRecord

// PredictionTable is the prediction table in file order
type PredictionTable []PredictionRecord

// Dataset is the immutable result of loading both input files
type Dataset struct {
	Observations    ObservationTable `json:"-"`
	Predictions     PredictionTable  `json:"-"`
	Indicators      []Indicator      `json:"indicators"`           // every numeric column of the historical table
	Predicted       []Indicator      `json:"predicted_indicators"` // every numeric column of the prediction table
	ObservationsURL string           `json:"observations_path"`
	PredictionsURL  string           `json:"predictions_path"`
	LoadedAt        time.Time        `json:"loaded_at"`
}

// HasIndicator reports whether the historical table carries the column
func (d *Dataset) HasIndicator(ind Indicator) bool {
	for _, i := range d.Indicators {
		if i == ind {
			return true
		}
	}
	return false
}

// HasPredicted reports whether the prediction table carries the column
func (d *Dataset) HasPredicted(ind Indicator) bool {
	for _, i := range d.Predicted {
		if i == ind {
			return true
		}
	}
	return false
}

// SortedIndicators returns a sorted copy of the indicator list
func SortedIndicators(inds []Indicator) []Indicator {
	out := make([]Indicator, len(inds))
	copy(out, inds)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
