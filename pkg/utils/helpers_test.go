package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		ok      bool
		wantErr bool
	}{
		{"12.5", 12.5, true, false},
		{" 7 ", 7, true, false},
		{"-3e2", -300, true, false},
		{"", 0, false, false},
		{"NaN", 0, false, false},
		{"n/a", 0, false, false},
		{"abc", 0, false, true},
		{"+Inf", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, ok, err := ParseCell(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestParseYear(t *testing.T) {
	y, err := ParseYear("2020")
	require.NoError(t, err)
	assert.Equal(t, 2020, y)

	y, err = ParseYear("2005.0")
	require.NoError(t, err)
	assert.Equal(t, 2005, y)

	_, err = ParseYear("2005.5")
	assert.Error(t, err)
	_, err = ParseYear("")
	assert.Error(t, err)
}

func TestCleanHeader(t *testing.T) {
	assert.Equal(t, "country", CleanHeader("\ufeff\"country\" "))
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(nil))
	assert.Equal(t, "1.5", FormatCell(1.5))
	assert.Equal(t, "20", FormatCell(20))
	assert.Equal(t, "India", FormatCell("India"))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseDuration("30s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("-1s", time.Minute))
}

func TestOutputManager(t *testing.T) {
	om := NewOutputManager(t.TempDir())

	path, err := om.GetOutputFilePath("job-1", "../../etc/comparison.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(om.BaseOutputDir, "job-1", "comparison.csv"), path)

	assert.Equal(t, "csv", om.GetFileType(path))
	assert.Equal(t, "xlsx", om.GetFileType("a.XLSX"))
	assert.Equal(t, "application/octet-stream", om.GetContentType("a.bin"))
	assert.Equal(t, "/api/v1/exports/job-1/download", om.GetDownloadURL("job-1"))
}

func TestOutputManagerFiles(t *testing.T) {
	om := NewOutputManager(filepath.Join(t.TempDir(), "nested", "exports"))
	require.NoError(t, om.EnsureOutputDirExists())
	info, err := os.Stat(om.BaseOutputDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	path := filepath.Join(om.BaseOutputDir, "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("country\nA\n"), 0o644))
	size, err := om.GetFileSize(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	_, err = om.GetFileSize(filepath.Join(om.BaseOutputDir, "missing.csv"))
	assert.Error(t, err)
}
