package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sdg7-dashboard/internal/model"
	"sdg7-dashboard/internal/store"
)

func sampleTable() model.Table {
	return model.Table{
		Name:    "comparison",
		Columns: []string{"country", "access_to_electricity_2020", "access_to_electricity_delta"},
		Rows: [][]interface{}{
			{"A", 50.0, 20.0},
			{"B", 80.0, nil},
		},
	}
}

func TestExportCSV(t *testing.T) {
	em := NewExportManager(t.TempDir())

	res, err := em.Export(context.Background(), "job-csv", sampleTable(), model.FormatCSV, "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.RecordCount)
	assert.Equal(t, "comparison.csv", filepath.Base(res.Path))

	info, err := os.Stat(res.Path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), res.SizeBytes)
	assert.Positive(t, res.SizeBytes)

	f, err := os.Open(res.Path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"country", "access_to_electricity_2020", "access_to_electricity_delta"},
		{"A", "50", "20"},
		{"B", "80", ""},
	}, records)
}

func TestExportJSON(t *testing.T) {
	em := NewExportManager(t.TempDir())

	res, err := em.Export(context.Background(), "job-json", sampleTable(), model.FormatJSON, "out.json")
	require.NoError(t, err)
	assert.Equal(t, "out.json", filepath.Base(res.Path))

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0]["country"])
	assert.Equal(t, 20.0, rows[0]["access_to_electricity_delta"])
	assert.Contains(t, rows[1], "access_to_electricity_delta")
	assert.Nil(t, rows[1]["access_to_electricity_delta"])
}

func TestExportXLSX(t *testing.T) {
	em := NewExportManager(t.TempDir())

	res, err := em.Export(context.Background(), "job-xlsx", sampleTable(), model.FormatXLSX, "")
	require.NoError(t, err)

	f, err := excelize.OpenFile(res.Path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("comparison")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"country", "access_to_electricity_2020", "access_to_electricity_delta"}, rows[0])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "20", rows[1][2])
	assert.Len(t, rows[2], 2, "null cell left empty")
}

func TestExportSQLite(t *testing.T) {
	require.NoError(t, store.InitDB(":memory:"))
	t.Cleanup(func() { store.Close() })

	em := NewExportManager(t.TempDir())
	res, err := em.Export(context.Background(), "job-db", sampleTable(), model.FormatSQLite, "")
	require.NoError(t, err)
	assert.Equal(t, "database", res.Type)
	assert.Equal(t, 2, res.RecordCount)

	rows, err := store.GetRows("job-db", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExportRejects(t *testing.T) {
	em := NewExportManager(t.TempDir())

	res, err := em.Export(context.Background(), "job", sampleTable(), "parquet", "")
	assert.Error(t, err)
	assert.False(t, res.Success)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = em.Export(ctx, "job", sampleTable(), model.FormatCSV, "")
	assert.ErrorIs(t, err, context.Canceled)
}
