package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sdg7-dashboard/internal/model"
)

const observationsHeader = "country,year,access_to_electricity,access_to_clean_fuels,renewable_capacity_per_capita," +
	"renewable_energy_share,fossil_electricity,energy_intensity,co2_emissions_kt,gdp_per_capita"

const predictionsHeader = "country,access_to_electricity,access_to_clean_fuels,co2_emissions_kt"

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

// writeFixtures writes a small pair of input files:
// India and Kenya have both years, Germany lacks 2000, Atlantis has no region,
// Narnia has a prediction but no history.
func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	obs := writeFile(t, dir, "observations.csv",
		observationsHeader,
		"India,2000,59.3,22.5,10.0,53.9,72.8,7.2,980000,443",
		"India,2020,99.0,68.0,96.0,36.0,75.0,4.2,2200000,1900",
		"Kenya,2000,15.2,4.1,1.0,80.0,20.0,9.5,8000,400",
		"Kenya,2020,71.4,19.5,2.0,71.0,10.0,6.5,17000,1800",
		"Germany,2020,100,100,700,18.0,45.0,3.0,600000,46000",
		"Atlantis,2020,50,,5,,,,,",
	)
	pred := writeFile(t, dir, "predictions.csv",
		predictionsHeader,
		"India,100,90,2500000",
		"Kenya,95,40,20000",
		"Germany,100,100,500000",
		"Narnia,80,70,1000",
	)
	return obs, pred
}

func record(country string, year int, vals map[model.Indicator]float64) model.ObservationRecord {
	return model.ObservationRecord{Country: country, Year: year, Values: vals}
}

type stubLookup map[string]model.Region

func (s stubLookup) Lookup(country string) (model.Region, bool) {
	r, ok := s[country]
	return r, ok
}
