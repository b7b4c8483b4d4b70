package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/puzpuzpuz/xsync/v4"

	"sdg7-dashboard/internal/logging"
	"sdg7-dashboard/internal/metrics"
	"sdg7-dashboard/internal/model"
	"sdg7-dashboard/pkg/utils"
)

// ------------------- Errors -------------------

var (
	ErrMissingColumn  = errors.New("missing required column")
	ErrMalformedValue = errors.New("malformed value")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrYearOutOfRange = errors.New("year out of range")
)

// LoadError reports an input file that is absent, unreadable or does not match
// the expected schema. It is fatal at startup.
type LoadError struct {
	Path   string
	Column string // empty when not column specific
	Line   int    // 1-based, 0 when not row specific
	Err    error
}

func (e *LoadError) Error() string {
	msg := "load " + e.Path
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	return msg + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

// ------------------- Cache -------------------

type loadKey struct {
	observations string
	predictions  string
}

var datasetCache = xsync.NewMap[loadKey, *model.Dataset]()

// DefaultIngestWorkers is the pool size used to read the two files
const DefaultIngestWorkers = 2

type loadOptions struct {
	workers int
}

// LoadOption tunes Load
type LoadOption func(*loadOptions)

// WithWorkers sets the ingest pool size
func WithWorkers(n int) LoadOption {
	return func(o *loadOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Load reads the historical and prediction tables and caches the result
// process-wide keyed on both paths. Repeated calls return the same *Dataset.
// A failed load is not cached.
func Load(ctx context.Context, observationsPath, predictionsPath string, opts ...LoadOption) (*model.Dataset, error) {
	o := loadOptions{workers: DefaultIngestWorkers}
	for _, opt := range opts {
		opt(&o)
	}

	key := loadKey{observations: observationsPath, predictions: predictionsPath}
	var loadErr error
	cached := true

	// Compute runs at most once per key at a time, so concurrent first calls read the files once.
	ds, _ := datasetCache.Compute(key, func(old *model.Dataset, loaded bool) (*model.Dataset, xsync.ComputeOp) {
		if loaded {
			return old, xsync.CancelOp
		}
		cached = false
		d, err := loadDataset(ctx, key, o.workers)
		if err != nil {
			loadErr = err
			return nil, xsync.CancelOp
		}
		return d, xsync.UpdateOp
	})

	if loadErr != nil {
		metrics.RecordDatasetLoad("error", 0, 0)
		return nil, loadErr
	}
	if cached {
		metrics.RecordDatasetLoad("cached", len(ds.Observations), len(ds.Predictions))
	}
	return ds, nil
}

// ClearCache forgets every cached dataset
func ClearCache() {
	datasetCache.Clear()
}

func loadDataset(ctx context.Context, key loadKey, workers int) (*model.Dataset, error) {
	start := time.Now()

	var (
		obs      model.ObservationTable
		obsInds  []model.Indicator
		preds    model.PredictionTable
		predInds []model.Indicator
		obsErr   error
		predErr  error
	)

	pool := pond.NewPool(workers, pond.WithQueueSize(2))
	defer pool.StopAndWait()
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	group.Submit(func() {
		if err := groupCtx.Err(); err != nil {
			obsErr = err
			return
		}
		obs, obsInds, obsErr = readObservations(key.observations)
	})
	group.Submit(func() {
		if err := groupCtx.Err(); err != nil {
			predErr = err
			return
		}
		preds, predInds, predErr = readPredictions(key.predictions)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if obsErr != nil {
		return nil, obsErr
	}
	if predErr != nil {
		return nil, predErr
	}

	ds := &model.Dataset{
		Observations:    obs,
		Predictions:     preds,
		Indicators:      obsInds,
		Predicted:       predInds,
		ObservationsURL: key.observations,
		PredictionsURL:  key.predictions,
		LoadedAt:        time.Now().UTC(),
	}

	gaps := JoinGaps(ds)
	ev := logging.Info().
		Str("observations", key.observations).
		Str("predictions", key.predictions).
		Int("observation_rows", len(obs)).
		Int("prediction_rows", len(preds)).
		Int("indicators", len(obsInds)).
		Dur("took", time.Since(start))
	if len(gaps) > 0 {
		ev = ev.Int("join_gaps", len(gaps))
	}
	ev.Msg("dataset loaded")

	metrics.RecordDatasetLoad("loaded", len(obs), len(preds))
	return ds, nil
}

// ------------------- CSV reading -------------------

// csvTable is a header plus raw rows with their line numbers
type csvTable struct {
	path   string
	header []string
	rows   [][]string
	lines  []int
}

func readCSV(path string) (*csvTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, &LoadError{Path: path, Line: 1, Err: fmt.Errorf("%w: empty file", ErrMissingColumn)}
	}
	if err != nil {
		return nil, &LoadError{Path: path, Line: 1, Err: err}
	}
	for i, h := range header {
		header[i] = utils.CleanHeader(h)
	}

	t := &csvTable{path: path, header: header}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &LoadError{Path: path, Line: pe.Line, Err: fmt.Errorf("%w: %v", ErrMalformedValue, pe.Err)}
			}
			return nil, &LoadError{Path: path, Err: err}
		}
		line, _ := r.FieldPos(0)
		t.rows = append(t.rows, rec)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

func readObservations(path string) (model.ObservationTable, []model.Indicator, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	schema, err := resolveSchema(t, []string{model.ColumnCountry, model.ColumnYear}, model.CoreIndicators)
	if err != nil {
		return nil, nil, err
	}

	type key struct {
		country string
		year    int
	}
	seen := make(map[key]int, len(t.rows))
	table := make(model.ObservationTable, 0, len(t.rows))

	for i, row := range t.rows {
		line := t.lines[i]
		country, err := schema.country(t, row, line)
		if err != nil {
			return nil, nil, err
		}

		yearCell := row[schema.keys[model.ColumnYear]]
		year, err := utils.ParseYear(yearCell)
		if err != nil {
			return nil, nil, &LoadError{Path: path, Column: model.ColumnYear, Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedValue, err)}
		}
		if year < model.MinYear || year > model.MaxYear {
			return nil, nil, &LoadError{Path: path, Column: model.ColumnYear, Line: line,
				Err: fmt.Errorf("%w: %d not in %d-%d", ErrYearOutOfRange, year, model.MinYear, model.MaxYear)}
		}

		k := key{country, year}
		if first, dup := seen[k]; dup {
			return nil, nil, &LoadError{Path: path, Line: line,
				Err: fmt.Errorf("%w: %s %d first seen on line %d", ErrDuplicateKey, country, year, first)}
		}
		seen[k] = line

		values, err := schema.values(t, row, line)
		if err != nil {
			return nil, nil, err
		}
		table = append(table, model.ObservationRecord{Country: country, Year: year, Values: values})
	}
	return table, schema.indicators, nil
}

func readPredictions(path string) (model.PredictionTable, []model.Indicator, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	schema, err := resolveSchema(t, []string{model.ColumnCountry}, model.PredictedIndicators)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]int, len(t.rows))
	table := make(model.PredictionTable, 0, len(t.rows))

	for i, row := range t.rows {
		line := t.lines[i]
		country, err := schema.country(t, row, line)
		if err != nil {
			return nil, nil, err
		}
		if first, dup := seen[country]; dup {
			return nil, nil, &LoadError{Path: path, Line: line,
				Err: fmt.Errorf("%w: %s first seen on line %d", ErrDuplicateKey, country, first)}
		}
		seen[country] = line

		values, err := schema.values(t, row, line)
		if err != nil {
			return nil, nil, err
		}
		table = append(table, model.PredictionRecord{Country: country, Values: values})
	}
	return table, schema.indicators, nil
}
