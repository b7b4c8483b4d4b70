package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "Data/Predictions/predictions_linear_2030.csv", cfg.Data.PredictionsPath)
	assert.Equal(t, 2, cfg.Data.IngestWorkers)
	assert.Equal(t, 5*time.Minute, cfg.Export.JobTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
  cors_origins: ["http://localhost:8501"]
data:
  observations_path: /data/obs.csv
export:
  job_timeout: 45s
logging:
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:8501"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/data/obs.csv", cfg.Data.ObservationsPath)
	assert.Equal(t, "Data/Predictions/predictions_linear_2030.csv", cfg.Data.PredictionsPath)
	assert.Equal(t, 45*time.Second, cfg.Export.JobTimeout)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("SDG7_SERVER__PORT", "7070")
	t.Setenv("SDG7_DATA__PREDICTIONS_PATH", "/tmp/pred.csv")
	t.Setenv("SDG7_SERVER__CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("SDG7_LOGGING__LEVEL", "debug")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/tmp/pred.csv", cfg.Data.PredictionsPath)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidationFails(t *testing.T) {
	t.Setenv("SDG7_LOGGING__LEVEL", "loud")
	_, err := LoadFile("")
	assert.Error(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "data.observations_path", envTransformFunc("SDG7_DATA__OBSERVATIONS_PATH"))
	assert.Equal(t, "server.port", envTransformFunc("SDG7_SERVER__PORT"))
}
