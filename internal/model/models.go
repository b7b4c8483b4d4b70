package model

import "time"

// View names accepted by the export path
const (
	ViewObservations      = "observations"
	ViewComparison        = "comparison"
	ViewGrowth            = "growth"
	ViewQuartiles         = "quartiles"
	ViewDistribution      = "distribution"
	ViewMap               = "map"
	ViewSummary           = "summary"
	ViewCorrelationMatrix = "correlation-matrix"
)

// Export formats
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// Export job statuses
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ViewRequest selects a derived view and its parameters.
// Only the fields the view needs are read; zero values fall back to defaults.
type ViewRequest struct {
	View       string    `json:"view" validate:"required,oneof=observations comparison growth quartiles distribution map summary correlation-matrix"`
	Year       int       `json:"year,omitempty" validate:"omitempty,min=2000,max=2030"`
	Baseline   int       `json:"baseline,omitempty" validate:"omitempty,min=2000,max=2020"`
	Start      int       `json:"start,omitempty" validate:"omitempty,min=2000,max=2020"`
	End        int       `json:"end,omitempty" validate:"omitempty,min=2000,max=2020"`
	Indicator  Indicator `json:"indicator,omitempty"`
	Country    string    `json:"country,omitempty"`
	Countries  []string  `json:"countries,omitempty"`
	SortBy     Indicator `json:"sort_by,omitempty"`
	Descending bool      `json:"descending,omitempty"`
	Limit      int       `json:"limit,omitempty" validate:"omitempty,min=1"`
	K          int       `json:"k,omitempty" validate:"omitempty,min=2,max=20"`
	Bins       int       `json:"bins,omitempty" validate:"omitempty,min=1,max=500"`
	ByRegion   bool      `json:"by_region,omitempty"`
}

// ExportJobSpec is the body of POST /api/v1/exports
type ExportJobSpec struct {
	Request ViewRequest `json:"request" validate:"required"`
	Format  string      `json:"format" validate:"required,oneof=csv json xlsx sqlite"`
	File    string      `json:"file,omitempty"`    // output file name, defaults to <view>.<format>
	Timeout string      `json:"timeout,omitempty"` // e.g. "30s"
}

// ExportJob is the persisted lifecycle of one export
type ExportJob struct {
	ID        string        `json:"id"`
	Spec      ExportJobSpec `json:"spec"`
	Status    string        `json:"status"`
	Path      string        `json:"path,omitempty"`
	RowCount  int           `json:"row_count"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "file" or "database"
	Format      string    `json:"format"`
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	SizeBytes   int64     `json:"size_bytes,omitempty"` // file exports only
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
