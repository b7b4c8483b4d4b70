// @title SDG7 Indicator API
// @version 1.0
// @description Historical and 2030-projected sustainable energy indicators: comparisons, growth, correlations, quantile buckets and exports.
// @BasePath /
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"sdg7-dashboard/internal/api"
	"sdg7-dashboard/internal/api/handler"
	"sdg7-dashboard/internal/config"
	"sdg7-dashboard/internal/logging"
	"sdg7-dashboard/internal/pipeline"
	"sdg7-dashboard/internal/regions"
	"sdg7-dashboard/internal/store"
	"sdg7-dashboard/pkg/router"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: search config.yaml, $SDG7_CONFIG_PATH)")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lookup := regions.Default()
	if cfg.Data.RegionsPath != "" {
		if lookup, err = regions.LoadFile(cfg.Data.RegionsPath); err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Data.RegionsPath).Msg("failed to load region lookup")
		}
	}

	ds, err := pipeline.Load(ctx, cfg.Data.ObservationsPath, cfg.Data.PredictionsPath,
		pipeline.WithWorkers(cfg.Data.IngestWorkers))
	if err != nil {
		event := logging.Fatal().Err(err)
		var le *pipeline.LoadError
		if errors.As(err, &le) {
			event = event.Str("path", le.Path).Str("column", le.Column).Int("line", le.Line)
		}
		event.Msg("failed to load dataset")
	}

	if gaps := pipeline.JoinGaps(ds); len(gaps) > 0 {
		logging.Warn().Strs("countries", gaps).Msg("prediction countries without historical rows are dropped from comparisons")
	}

	if err := store.InitDB(cfg.Export.DBPath); err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Export.DBPath).Msg("failed to open export store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close export store")
		}
	}()

	exports := pipeline.NewExportManager(cfg.Export.OutputDir)
	if err := exports.Output.EnsureOutputDirExists(); err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Export.OutputDir).Msg("failed to create export directory")
	}

	h := handler.New(ds, lookup, exports, cfg.Export.JobTimeout)

	r := router.New(router.Options{
		CORSOrigins:     cfg.Server.CORSOrigins,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	api.RegisterRoutes(r, h)

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Int("observations", len(ds.Observations)).
		Int("predictions", len(ds.Predictions)).
		Int("regions", lookup.Len()).
		Msg("starting server")

	if err := r.Serve(ctx, cfg.Server.Addr()); err != nil {
		logging.Error().Err(err).Msg("server error")
	}

	logging.Info().Msg("waiting for export jobs")
	h.Wait()
	logging.Info().Msg("server stopped")
}
