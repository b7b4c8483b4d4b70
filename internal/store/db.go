package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"sdg7-dashboard/internal/model"
)

// ErrJobNotFound is returned for an unknown export job ID
var ErrJobNotFound = errors.New("export job not found")

var db *sql.DB

// JobError is one recorded failure of an export job
type JobError struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// InitDB opens the SQLite database and creates the tables
func InitDB(dbPath string) error {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	// one writer; also keeps an in-memory database alive across queries
	conn.SetMaxOpenConns(1)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS export_jobs (
			id TEXT PRIMARY KEY,
			spec TEXT,
			status TEXT,
			path TEXT,
			row_count INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS export_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			error_message TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS export_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			table_name TEXT,
			row_index INTEGER,
			data TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_export_rows_job ON export_rows(job_id, row_index);`,
	}
	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	if db != nil {
		db.Close()
	}
	db = conn
	return nil
}

// Close closes the database
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// SaveJob stores a new export job
func SaveJob(job model.ExportJob) error {
	specJSON, err := json.Marshal(job.Spec)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.Status == "" {
		job.Status = model.StatusPending
	}
	_, err = db.Exec(`INSERT INTO export_jobs (id, spec, status, path, row_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, string(specJSON), job.Status, job.Path, job.RowCount, job.CreatedAt, now)
	return err
}

// UpdateJobStatus updates job status
func UpdateJobStatus(jobID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE export_jobs SET status = ?, updated_at = ? WHERE id = ?`, status, now, jobID)
	return err
}

// CompleteJob marks a job completed with its output location and row count
func CompleteJob(jobID, path string, rowCount int) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE export_jobs SET status = ?, path = ?, row_count = ?, updated_at = ? WHERE id = ?`,
		model.StatusCompleted, path, rowCount, now, jobID)
	return err
}

// SaveJobError records an error for a job
func SaveJobError(jobID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO export_errors (job_id, error_message, created_at) VALUES (?, ?, ?)`,
		jobID, err.Error(), now)
	return e
}

// GetJobErrors returns the recorded errors of a job, oldest first
func GetJobErrors(jobID string) ([]JobError, error) {
	rows, err := db.Query(`SELECT error_message, created_at FROM export_errors WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobError
	for rows.Next() {
		var e JobError
		if err := rows.Scan(&e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetJob fetches a job with its spec and the last error, if any
func GetJob(jobID string) (*model.ExportJob, error) {
	var (
		job      model.ExportJob
		specJSON string
		path     sql.NullString
	)
	err := db.QueryRow(`SELECT id, spec, status, path, row_count, created_at, updated_at FROM export_jobs WHERE id = ?`, jobID).
		Scan(&job.ID, &specJSON, &job.Status, &path, &job.RowCount, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	job.Path = path.String
	if err := json.Unmarshal([]byte(specJSON), &job.Spec); err != nil {
		return nil, fmt.Errorf("failed to decode job spec: %w", err)
	}

	var msg sql.NullString
	err = db.QueryRow(`SELECT error_message FROM export_errors WHERE job_id = ? ORDER BY id DESC LIMIT 1`, jobID).Scan(&msg)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	job.Error = msg.String
	return &job, nil
}

// ListJobs returns the most recent jobs first; limit <= 0 means no limit
func ListJobs(limit int) ([]model.ExportJob, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT id, spec, status, path, row_count, created_at, updated_at FROM export_jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []model.ExportJob{}
	for rows.Next() {
		var (
			job      model.ExportJob
			specJSON string
			path     sql.NullString
		)
		if err := rows.Scan(&job.ID, &specJSON, &job.Status, &path, &job.RowCount, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		job.Path = path.String
		if err := json.Unmarshal([]byte(specJSON), &job.Spec); err != nil {
			return nil, fmt.Errorf("failed to decode job spec: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// SaveRows writes a table into export_rows as one JSON object per row, keyed by column
func SaveRows(jobID string, table model.Table) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare(`INSERT INTO export_rows (job_id, table_name, row_index, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	for i, row := range table.Rows {
		obj := make(map[string]interface{}, len(table.Columns))
		for c, name := range table.Columns {
			if c < len(row) {
				obj[name] = row[c]
			}
		}
		data, err := json.Marshal(obj)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if _, err := stmt.Exec(jobID, table.Name, i, string(data)); err != nil {
			tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(table.Rows), nil
}

// GetRows reads back the rows of a database export in row order
func GetRows(jobID string, limit int) ([]map[string]interface{}, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT data FROM export_rows WHERE job_id = ? ORDER BY row_index LIMIT ?`, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(data), &obj); err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}
