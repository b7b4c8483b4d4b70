package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"sdg7-dashboard/internal/logging"
	"sdg7-dashboard/internal/model"
	"sdg7-dashboard/internal/store"
	"sdg7-dashboard/pkg/utils"
)

// ExportManager writes derived views to files under the job output directory
// or into the SQLite store
type ExportManager struct {
	Output *utils.OutputManager
}

// NewExportManager creates an export manager rooted at outputDir
func NewExportManager(outputDir string) *ExportManager {
	return &ExportManager{Output: utils.NewOutputManager(outputDir)}
}

// Export writes table in the given format. fileName defaults to <table>.<format>.
func (em *ExportManager) Export(ctx context.Context, jobID string, table model.Table, format, fileName string) (model.ExportResult, error) {
	result := model.ExportResult{Type: "file", Format: format, Timestamp: time.Now().UTC()}

	if err := ctx.Err(); err != nil {
		result.Error = err.Error()
		return result, err
	}

	var err error
	switch format {
	case model.FormatSQLite:
		result.Type = "database"
		result.Path = "export_rows"
		result.RecordCount, err = store.SaveRows(jobID, table)
	case model.FormatCSV, model.FormatJSON, model.FormatXLSX:
		if fileName == "" {
			fileName = table.Name + "." + format
		}
		result.Path, err = em.Output.GetOutputFilePath(jobID, fileName)
		if err != nil {
			break
		}
		switch format {
		case model.FormatCSV:
			err = writeCSV(result.Path, table)
		case model.FormatJSON:
			err = writeJSON(result.Path, table)
		default:
			err = writeXLSX(result.Path, table)
		}
		if err == nil {
			result.RecordCount = len(table.Rows)
			result.SizeBytes, err = em.Output.GetFileSize(result.Path)
		}
	default:
		err = fmt.Errorf("unsupported export format: %s", format)
	}

	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
		logging.Error().Err(err).Str("job_id", jobID).Str("format", format).Msg("export failed")
		return result, err
	}
	logging.Info().
		Str("job_id", jobID).
		Str("format", format).
		Str("path", result.Path).
		Int("rows", result.RecordCount).
		Int64("bytes", result.SizeBytes).
		Msg("export written")
	return result, nil
}

// writeCSV writes the header and rows; null cells are empty
func writeCSV(path string, table model.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = utils.FormatCell(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// writeJSON writes an array of objects keyed by column; null cells stay null
func writeJSON(path string, table model.Table) error {
	records := make([]map[string]interface{}, 0, len(table.Rows))
	for _, row := range table.Rows {
		obj := make(map[string]interface{}, len(table.Columns))
		for i, c := range table.Columns {
			if i < len(row) {
				obj[c] = row[i]
			}
		}
		records = append(records, obj)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

// writeXLSX writes the table to a single sheet named after it
func writeXLSX(path string, table model.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := table.Name
	if sheet == "" {
		sheet = "Sheet1"
	}
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for i, header := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, 18); err != nil {
			return err
		}
	}
	for r, row := range table.Rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save XLSX file: %w", err)
	}
	return nil
}
