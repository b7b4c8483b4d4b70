package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdg7-dashboard/internal/model"
)

func TestLoad(t *testing.T) {
	obsPath, predPath := writeFixtures(t)

	ds, err := Load(context.Background(), obsPath, predPath)
	require.NoError(t, err)

	assert.Len(t, ds.Observations, 6)
	assert.Len(t, ds.Predictions, 4)
	assert.Equal(t, model.CoreIndicators, ds.Indicators)
	assert.Equal(t, model.PredictedIndicators, ds.Predicted)
	assert.Equal(t, obsPath, ds.ObservationsURL)

	india := ds.Observations[0]
	assert.Equal(t, "India", india.Country)
	assert.Equal(t, 2000, india.Year)
	v, ok := india.Value(model.AccessToElectricity)
	assert.True(t, ok)
	assert.Equal(t, 59.3, v)

	// empty cells are nulls
	atlantis := ds.Observations[5]
	_, ok = atlantis.Value(model.AccessToCleanFuels)
	assert.False(t, ok)
	_, ok = atlantis.Value(model.AccessToElectricity)
	assert.True(t, ok)
}

func TestLoadIsCached(t *testing.T) {
	obsPath, predPath := writeFixtures(t)

	first, err := Load(context.Background(), obsPath, predPath)
	require.NoError(t, err)

	// removing the files proves the second call does no I/O
	require.NoError(t, os.Remove(obsPath))
	second, err := Load(context.Background(), obsPath, predPath)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadConcurrentCallsShareResult(t *testing.T) {
	obsPath, predPath := writeFixtures(t)

	var wg sync.WaitGroup
	results := make([]*model.Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := Load(context.Background(), obsPath, predPath, WithWorkers(1))
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	wg.Wait()

	for _, ds := range results[1:] {
		assert.Same(t, results[0], ds)
	}
}

func TestLoadFailureIsNotCached(t *testing.T) {
	dir := t.TempDir()
	obsPath := filepath.Join(dir, "observations.csv")
	_, predPath := writeFixtures(t)

	_, err := Load(context.Background(), obsPath, predPath)
	require.Error(t, err)

	writeFile(t, dir, "observations.csv", observationsHeader, "India,2020,99,68,96,36,75,4.2,2200000,1900")
	ds, err := Load(context.Background(), obsPath, predPath)
	require.NoError(t, err)
	assert.Len(t, ds.Observations, 1)
}

func TestLoadErrors(t *testing.T) {
	_, goodPred := writeFixtures(t)

	tests := []struct {
		name   string
		lines  []string
		target error
		column string
	}{
		{
			name:   "missing indicator column",
			lines:  []string{"country,year,access_to_electricity", "India,2020,99"},
			target: ErrMissingColumn,
			column: string(model.AccessToCleanFuels),
		},
		{
			name:   "missing year column",
			lines:  []string{"country,access_to_electricity"},
			target: ErrMissingColumn,
			column: model.ColumnYear,
		},
		{
			name:   "malformed number",
			lines:  []string{observationsHeader, "India,2020,lots,68,96,36,75,4.2,2200000,1900"},
			target: ErrMalformedValue,
			column: string(model.AccessToElectricity),
		},
		{
			name:   "malformed year",
			lines:  []string{observationsHeader, "India,soon,99,68,96,36,75,4.2,2200000,1900"},
			target: ErrMalformedValue,
			column: model.ColumnYear,
		},
		{
			name:   "year out of range",
			lines:  []string{observationsHeader, "India,1999,99,68,96,36,75,4.2,2200000,1900"},
			target: ErrYearOutOfRange,
			column: model.ColumnYear,
		},
		{
			name: "duplicate country and year",
			lines: []string{observationsHeader,
				"India,2020,99,68,96,36,75,4.2,2200000,1900",
				"India,2020,98,68,96,36,75,4.2,2200000,1900"},
			target: ErrDuplicateKey,
		},
		{
			name:   "empty country",
			lines:  []string{observationsHeader, ",2020,99,68,96,36,75,4.2,2200000,1900"},
			target: ErrMalformedValue,
			column: model.ColumnCountry,
		},
		{
			name:   "empty file",
			lines:  nil,
			target: ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "observations.csv")
			content := ""
			for _, l := range tt.lines {
				content += l + "\n"
			}
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := Load(context.Background(), path, goodPred)
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le), "want *LoadError, got %T", err)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, path, le.Path)
			if tt.column != "" {
				assert.Equal(t, tt.column, le.Column)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	obsPath, _ := writeFixtures(t)
	_, err := Load(context.Background(), obsPath, filepath.Join(t.TempDir(), "nope.csv"))

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDuplicatePrediction(t *testing.T) {
	obsPath, _ := writeFixtures(t)
	pred := writeFile(t, t.TempDir(), "predictions.csv", predictionsHeader, "India,100,90,1", "India,99,90,1")

	_, err := Load(context.Background(), obsPath, pred)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestLoadExtraColumns(t *testing.T) {
	dir := t.TempDir()
	obs := writeFile(t, dir, "observations.csv",
		"\ufeff"+observationsHeader+",density,notes,region",
		"India,2020.0,99,68,96,36,75,4.2,2200000,1900,464,big,Asia",
	)
	pred := writeFile(t, dir, "predictions.csv",
		"country,year,access_to_electricity,access_to_clean_fuels,co2_emissions_kt",
		"India,2030,100,90,2500000",
	)

	ds, err := Load(context.Background(), obs, pred)
	require.NoError(t, err)

	assert.True(t, ds.HasIndicator("density"))
	assert.False(t, ds.HasIndicator("notes"))
	assert.False(t, ds.HasIndicator("region"))
	assert.Equal(t, 2020, ds.Observations[0].Year)
	assert.False(t, ds.HasPredicted("year"))
}

func TestJoinGaps(t *testing.T) {
	obsPath, predPath := writeFixtures(t)
	ds, err := Load(context.Background(), obsPath, predPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Narnia"}, JoinGaps(ds))
}

func TestCheckIndicator(t *testing.T) {
	ds := &model.Dataset{Indicators: model.CoreIndicators, Predicted: model.PredictedIndicators}

	assert.NoError(t, CheckIndicator(ds, model.GDPPerCapita, false))
	assert.ErrorIs(t, CheckIndicator(ds, model.GDPPerCapita, true), ErrUnknownIndicator)
	assert.ErrorIs(t, CheckIndicator(ds, "happiness", false), ErrUnknownIndicator)
	assert.ErrorIs(t, CheckIndicator(ds, "", false), ErrUnknownIndicator)
}

func TestLoadErrorMessage(t *testing.T) {
	err := &LoadError{Path: "obs.csv", Column: "year", Line: 3, Err: ErrYearOutOfRange}
	assert.Equal(t, `load obs.csv line 3 column "year": year out of range`, err.Error())
}
