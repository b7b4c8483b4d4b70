package handler

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"sdg7-dashboard/internal/logging"
)

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError carries a machine-readable code and a message
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIMeta is attached to successful responses
type APIMeta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
	Count      *int      `json:"count,omitempty"`
}

// Error codes
const (
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeUnknownIndicator = "UNKNOWN_INDICATOR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
)

type responder struct {
	w     http.ResponseWriter
	r     *http.Request
	start time.Time
}

func respond(w http.ResponseWriter, r *http.Request) *responder {
	return &responder{w: w, r: r, start: time.Now()}
}

// Success writes a 200 envelope
func (rw *responder) Success(data interface{}) {
	rw.write(http.StatusOK, data, nil)
}

// List writes a 200 envelope whose meta carries the item count
func (rw *responder) List(data interface{}, count int) {
	rw.write(http.StatusOK, data, &count)
}

// Accepted writes a 202 envelope for asynchronous work
func (rw *responder) Accepted(data interface{}) {
	rw.write(http.StatusAccepted, data, nil)
}

func (rw *responder) write(status int, data interface{}, count *int) {
	writeJSON(rw.w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			RequestID:  logging.RequestIDFromContext(rw.r.Context()),
			Timestamp:  time.Now().UTC(),
			DurationMs: time.Since(rw.start).Milliseconds(),
			Count:      count,
		},
	})
}

// Error writes an error envelope
func (rw *responder) Error(status int, code, message string) {
	rw.ErrorWithDetails(status, code, message, nil)
}

// ErrorWithDetails writes an error envelope with extra details
func (rw *responder) ErrorWithDetails(status int, code, message string, details interface{}) {
	writeJSON(rw.w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: logging.RequestIDFromContext(rw.r.Context()),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// NotFound answers unmatched routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond(w, r).Error(http.StatusNotFound, ErrCodeNotFound, "no route for "+r.URL.Path)
}

// MethodNotAllowed answers known routes called with the wrong method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
}
