// Package regions maps country names to continent-level regions.
//
// The lookup is a static asset embedded at build time. It can be replaced by an
// external YAML file with the same shape (region name -> list of countries).
package regions

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sdg7-dashboard/internal/model"
)

//go:embed regions.yaml
var embedded []byte

var knownRegions = map[model.Region]bool{
	model.RegionAfrica:       true,
	model.RegionAsia:         true,
	model.RegionEurope:       true,
	model.RegionNorthAmerica: true,
	model.RegionSouthAmerica: true,
	model.RegionOceania:      true,
}

// Lookup is an immutable country -> region table
type Lookup struct {
	byCountry map[string]model.Region
}

// Default returns the embedded lookup. The asset is validated by tests, so a
// parse failure here is a build defect.
func Default() *Lookup {
	l, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("regions: embedded asset: %v", err))
	}
	return l
}

// LoadFile reads a lookup from a YAML file
func LoadFile(path string) (*Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}
	return Parse(data)
}

// Parse decodes region -> countries YAML. A country listed under two regions
// or an unknown region name is rejected.
func Parse(data []byte) (*Lookup, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode regions: %w", err)
	}

	l := &Lookup{byCountry: make(map[string]model.Region)}
	for name, countries := range raw {
		region := model.Region(name)
		if !knownRegions[region] {
			return nil, fmt.Errorf("unknown region %q", name)
		}
		for _, c := range countries {
			if prev, dup := l.byCountry[c]; dup {
				return nil, fmt.Errorf("country %q listed under %s and %s", c, prev, region)
			}
			l.byCountry[c] = region
		}
	}
	return l, nil
}

// Lookup returns the region of a country. The match is on the exact string;
// a miss returns false and is not an error.
func (l *Lookup) Lookup(country string) (model.Region, bool) {
	r, ok := l.byCountry[country]
	return r, ok
}

// Len is the number of countries in the table
func (l *Lookup) Len() int {
	return len(l.byCountry)
}
