// Command sdg7-export builds one derived view from the indicator tables and
// writes it as CSV, JSON, XLSX or into the SQLite store, without the HTTP server.
//
//	sdg7-export -view comparison -baseline 2020 -indicator access_to_electricity -order asc -limit 10 -format csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"sdg7-dashboard/internal/config"
	"sdg7-dashboard/internal/logging"
	"sdg7-dashboard/internal/model"
	"sdg7-dashboard/internal/pipeline"
	"sdg7-dashboard/internal/regions"
	"sdg7-dashboard/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		obsPath    = flag.String("obs", "", "historical observations CSV (overrides config)")
		predPath   = flag.String("preds", "", "2030 predictions CSV (overrides config)")
		outDir     = flag.String("out", "", "output directory (overrides config)")
		dbPath     = flag.String("db", "", "SQLite job store (overrides config)")
		view       = flag.String("view", model.ViewComparison, "observations, comparison, growth, quartiles, distribution, map, summary or correlation-matrix")
		format     = flag.String("format", model.FormatCSV, "csv, json, xlsx or sqlite")
		file       = flag.String("file", "", "output file name (default <view>.<format>)")
		year       = flag.Int("year", 0, "year (map also accepts 2030)")
		baseline   = flag.Int("baseline", 0, "comparison baseline year")
		start      = flag.Int("start", 0, "growth and summary start year")
		end        = flag.Int("end", 0, "growth and summary end year")
		indicator  = flag.String("indicator", "", "indicator column")
		country    = flag.String("country", "", "country for the summary view")
		countries  = flag.String("countries", "", "comma-separated country filter")
		k          = flag.Int("k", 0, "quantile bucket count")
		bins       = flag.Int("bins", 0, "histogram bins")
		limit      = flag.Int("limit", 0, "keep the first N comparison rows")
		order      = flag.String("order", "desc", "comparison delta order, asc or desc")
		byRegion   = flag.Bool("by-region", false, "group distribution statistics by region")
		timeout    = flag.String("timeout", "", "job timeout, e.g. 30s")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console", Output: os.Stderr})

	if *obsPath != "" {
		cfg.Data.ObservationsPath = *obsPath
	}
	if *predPath != "" {
		cfg.Data.PredictionsPath = *predPath
	}
	if *outDir != "" {
		cfg.Export.OutputDir = *outDir
	}
	if *dbPath != "" {
		cfg.Export.DBPath = *dbPath
	}

	descending, err := parseOrder(*order)
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid export request")
	}

	spec := model.ExportJobSpec{
		Request: model.ViewRequest{
			View:       *view,
			Year:       *year,
			Baseline:   *baseline,
			Start:      *start,
			End:        *end,
			Indicator:  model.Indicator(strings.ToLower(*indicator)),
			SortBy:     model.Indicator(strings.ToLower(*indicator)),
			Country:    *country,
			Countries:  splitList(*countries),
			Descending: descending,
			Limit:      *limit,
			K:          *k,
			Bins:       *bins,
			ByRegion:   *byRegion,
		},
		Format:  *format,
		File:    *file,
		Timeout: *timeout,
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&spec); err != nil {
		logging.Fatal().Err(err).Msg("invalid export request")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, spec); err != nil {
		logging.Error().Err(err).Msg("export failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, spec model.ExportJobSpec) error {
	lookup := regions.Default()
	if cfg.Data.RegionsPath != "" {
		var err error
		if lookup, err = regions.LoadFile(cfg.Data.RegionsPath); err != nil {
			return fmt.Errorf("region lookup: %w", err)
		}
	}

	ds, err := pipeline.Load(ctx, cfg.Data.ObservationsPath, cfg.Data.PredictionsPath,
		pipeline.WithWorkers(cfg.Data.IngestWorkers))
	if err != nil {
		return err
	}
	if err := pipeline.CheckRequest(ds, spec.Request); err != nil {
		return err
	}

	if err := store.InitDB(cfg.Export.DBPath); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	job := model.ExportJob{
		ID:        uuid.New().String(),
		Spec:      spec,
		Status:    model.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveJob(job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}

	exports := pipeline.NewExportManager(cfg.Export.OutputDir)
	if err := exports.Output.EnsureOutputDirExists(); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	result, err := pipeline.RunExport(ctx, ds, lookup, exports, job.ID, spec)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		JobID string `json:"job_id"`
		model.ExportResult
	}{job.ID, result})
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// parseOrder maps the -order flag onto ViewRequest.Descending, defaulting to
// descending like the comparison endpoint.
func parseOrder(order string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "desc":
		return true, nil
	case "asc":
		return false, nil
	}
	return false, fmt.Errorf("order must be asc or desc, got %q", order)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
