package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"sdg7-dashboard/internal/logging"
	"sdg7-dashboard/internal/model"
	"sdg7-dashboard/internal/pipeline"
	"sdg7-dashboard/internal/store"
)

// maxExportBody bounds the POST /exports payload
const maxExportBody = 64 << 10

// ExportCreated is returned when an export job is accepted
type ExportCreated struct {
	JobID       string    `json:"job_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	StatusURL   string    `json:"status_url"`
	DownloadURL string    `json:"download_url"`
}

// ExportDetail is a job with its recorded errors
type ExportDetail struct {
	model.ExportJob
	DownloadURL string           `json:"download_url,omitempty"`
	Errors      []store.JobError `json:"errors"`
}

// CreateExport starts an asynchronous export job
// @Summary Create an export job
// @Description Builds the requested view and writes it as CSV, JSON, XLSX or into the SQLite store. The job runs in the background; poll its status URL.
// @Tags exports
// @Accept json
// @Produce json
// @Param job body model.ExportJobSpec true "View request and output format"
// @Success 202 {object} APIResponse{data=ExportCreated}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /api/v1/exports [post]
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var spec model.ExportJobSpec
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExportBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeInvalidParameter, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&spec); err != nil {
		h.fail(rw, err)
		return
	}
	if err := pipeline.CheckRequest(h.ds, spec.Request); err != nil {
		if errors.Is(err, pipeline.ErrUnknownCountry) {
			err = &ParamError{Param: "request.country", Value: spec.Request.Country, Err: err}
		}
		h.fail(rw, err)
		return
	}

	job := model.ExportJob{
		ID:        uuid.New().String(),
		Spec:      spec,
		Status:    model.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveJob(job); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to save export job")
		rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "failed to save job")
		return
	}

	h.jobs.Add(1)
	go func() {
		defer h.jobs.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.jobTimeout)
		defer cancel()
		// RunExport records failures on the job itself
		_, _ = pipeline.RunExport(ctx, h.ds, h.lookup, h.exports, job.ID, spec)
	}()

	rw.Accepted(ExportCreated{
		JobID:       job.ID,
		Status:      job.Status,
		CreatedAt:   job.CreatedAt,
		StatusURL:   "/api/v1/exports/" + job.ID,
		DownloadURL: h.exports.Output.GetDownloadURL(job.ID),
	})
}

// ListExports lists export jobs, newest first
// @Summary List export jobs
// @Tags exports
// @Produce json
// @Param limit query int false "Maximum jobs" default(50)
// @Success 200 {object} APIResponse{data=[]model.ExportJob}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /api/v1/exports [get]
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	q := newQuery(r)
	p := listParams{Limit: q.Int("limit", 50)}
	if err := h.bind(q, &p); err != nil {
		h.fail(rw, err)
		return
	}
	jobs, err := store.ListJobs(p.Limit)
	if err != nil {
		h.fail(rw, fmt.Errorf("list jobs: %w", err))
		return
	}
	rw.List(jobs, len(jobs))
}

// GetExport returns one export job
// @Summary Get an export job
// @Tags exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} APIResponse{data=ExportDetail}
// @Failure 404 {object} APIResponse
// @Router /api/v1/exports/{id} [get]
func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	job, err := store.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(rw, err)
		return
	}
	errs, err := store.GetJobErrors(job.ID)
	if err != nil {
		h.fail(rw, fmt.Errorf("job errors: %w", err))
		return
	}
	if errs == nil {
		errs = []store.JobError{}
	}
	detail := ExportDetail{ExportJob: *job, Errors: errs}
	if job.Status == model.StatusCompleted {
		detail.DownloadURL = h.exports.Output.GetDownloadURL(job.ID)
	}
	rw.Success(detail)
}

// DownloadExport serves the output of a completed job
// @Summary Download an export
// @Description File exports are served as attachments; SQLite exports return their stored rows as JSON.
// @Tags exports
// @Produce application/octet-stream
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {file} file "Export file"
// @Failure 404 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Router /api/v1/exports/{id}/download [get]
func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	job, err := store.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(rw, err)
		return
	}
	if job.Status != model.StatusCompleted {
		h.fail(rw, fmt.Errorf("%w: status is %s", errJobNotReady, job.Status))
		return
	}

	if job.Spec.Format == model.FormatSQLite {
		rows, err := store.GetRows(job.ID, 0)
		if err != nil {
			h.fail(rw, fmt.Errorf("read rows: %w", err))
			return
		}
		rw.List(rows, len(rows))
		return
	}

	if _, err := h.exports.Output.GetFileSize(job.Path); err != nil {
		rw.Error(http.StatusNotFound, ErrCodeNotFound, "export file no longer exists")
		return
	}
	name := filepath.Base(job.Path)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", h.exports.Output.GetContentType(name))
	http.ServeFile(w, r, job.Path)
}
