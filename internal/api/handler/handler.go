// Package handler serves the derived indicator views and export jobs as JSON.
package handler

import (
	"errors"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"sdg7-dashboard/internal/logging"
	"sdg7-dashboard/internal/metrics"
	"sdg7-dashboard/internal/model"
	"sdg7-dashboard/internal/pipeline"
	"sdg7-dashboard/internal/store"
)

// ErrCodeInsufficientData is returned when a view has too few values to compute
const ErrCodeInsufficientData = "INSUFFICIENT_DATA"

var errJobNotReady = errors.New("export job has not completed")

// Handler serves requests against one loaded dataset. The dataset and the
// region-assigned copy of the observations are read-only and shared by all
// requests.
type Handler struct {
	ds           *model.Dataset
	lookup       pipeline.RegionLookup
	observations model.ObservationTable
	exports      *pipeline.ExportManager
	validate     *validator.Validate
	jobTimeout   time.Duration
	jobs         sync.WaitGroup
}

// New creates a handler. jobTimeout bounds each export job; zero uses
// pipeline.DefaultJobTimeout.
func New(ds *model.Dataset, lookup pipeline.RegionLookup, exports *pipeline.ExportManager, jobTimeout time.Duration) *Handler {
	if jobTimeout <= 0 {
		jobTimeout = pipeline.DefaultJobTimeout
	}
	return &Handler{
		ds:           ds,
		lookup:       lookup,
		observations: pipeline.AssignRegion(ds.Observations, lookup),
		exports:      exports,
		validate:     newValidator(),
		jobTimeout:   jobTimeout,
	}
}

// Wait blocks until every export job started by this handler has finished
func (h *Handler) Wait() {
	h.jobs.Wait()
}

// viewFunc computes one view. A negative count means the data is not a list.
type viewFunc func(q *query) (data interface{}, count int, err error)

func (h *Handler) serveView(w http.ResponseWriter, r *http.Request, view string, fn viewFunc) {
	rw := respond(w, r)
	start := time.Now()

	data, count, err := fn(newQuery(r))
	result := "ok"
	switch {
	case err != nil:
		result = "error"
		h.fail(rw, err)
	case count >= 0:
		if v := reflect.ValueOf(data); v.Kind() == reflect.Slice && v.IsNil() {
			data = []struct{}{}
		}
		rw.List(data, count)
	default:
		rw.Success(data)
	}
	metrics.RecordView(view, result, time.Since(start))
}

// fail maps an error onto a status code and error envelope
func (h *Handler) fail(rw *responder, err error) {
	var (
		paramErr *ParamError
		verrs    validator.ValidationErrors
	)
	switch {
	case errors.As(err, &paramErr):
		rw.Error(http.StatusBadRequest, ErrCodeInvalidParameter, err.Error())
	case errors.As(err, &verrs):
		details, msg := fieldErrors(verrs)
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeInvalidParameter, msg, details)
	case errors.Is(err, pipeline.ErrInvalidYearRange):
		rw.Error(http.StatusBadRequest, ErrCodeInvalidParameter, err.Error())
	case errors.Is(err, pipeline.ErrUnknownIndicator):
		rw.Error(http.StatusBadRequest, ErrCodeUnknownIndicator, err.Error())
	case errors.Is(err, pipeline.ErrUnknownCountry), errors.Is(err, store.ErrJobNotFound):
		rw.Error(http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, pipeline.ErrInsufficientData), errors.Is(err, pipeline.ErrInvalidBuckets),
		errors.Is(err, pipeline.ErrNonFiniteValue):
		rw.Error(http.StatusUnprocessableEntity, ErrCodeInsufficientData, err.Error())
	case errors.Is(err, errJobNotReady):
		rw.Error(http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		logging.Ctx(rw.r.Context()).Error().Err(err).Str("path", rw.r.URL.Path).Msg("request failed")
		rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}

// ------------------- Catalog -------------------

// HealthStatus is the liveness payload
type HealthStatus struct {
	Status       string    `json:"status"`
	Observations int       `json:"observations"`
	Predictions  int       `json:"predictions"`
	Regions      int       `json:"regions,omitempty"`
	JoinGaps     []string  `json:"join_gaps"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// Health reports liveness and the loaded table sizes
// @Summary Health check
// @Description Liveness probe with dataset row counts and prediction countries lacking history
// @Tags system
// @Produce json
// @Success 200 {object} APIResponse{data=HealthStatus}
// @Router /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:       "ok",
		Observations: len(h.ds.Observations),
		Predictions:  len(h.ds.Predictions),
		JoinGaps:     pipeline.JoinGaps(h.ds),
		LoadedAt:     h.ds.LoadedAt,
	}
	if status.JoinGaps == nil {
		status.JoinGaps = []string{}
	}
	if l, ok := h.lookup.(interface{ Len() int }); ok {
		status.Regions = l.Len()
	}
	respond(w, r).Success(status)
}

// CountryInfo is one entry of the country catalog
type CountryInfo struct {
	Country       string       `json:"country"`
	Region        model.Region `json:"region"`
	HasPrediction bool         `json:"has_prediction"`
}

// Countries lists every country of the historical table with its region
// @Summary List countries
// @Description Distinct countries of the historical table; countries missing from the region lookup are grouped as Unknown
// @Tags catalog
// @Produce json
// @Success 200 {object} APIResponse{data=[]CountryInfo}
// @Router /api/v1/countries [get]
func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	predicted := make(map[string]bool, len(h.ds.Predictions))
	for _, p := range h.ds.Predictions {
		predicted[p.Country] = true
	}

	names := pipeline.Countries(h.ds.Observations)
	out := make([]CountryInfo, len(names))
	for i, c := range names {
		region, ok := h.lookup.Lookup(c)
		if !ok {
			region = model.RegionUnknown
		}
		out[i] = CountryInfo{Country: c, Region: region, HasPrediction: predicted[c]}
	}
	respond(w, r).List(out, len(out))
}

// IndicatorCatalog lists the indicator columns of both tables
type IndicatorCatalog struct {
	Historical []model.Indicator `json:"historical"`
	Predicted  []model.Indicator `json:"predicted"`
	Years      []int             `json:"years"`
}

// Indicators lists indicator names and available years
// @Summary List indicators
// @Description Indicator columns of the historical and prediction tables and the years on record
// @Tags catalog
// @Produce json
// @Success 200 {object} APIResponse{data=IndicatorCatalog}
// @Router /api/v1/indicators [get]
func (h *Handler) Indicators(w http.ResponseWriter, r *http.Request) {
	respond(w, r).Success(IndicatorCatalog{
		Historical: h.ds.Indicators,
		Predicted:  h.ds.Predicted,
		Years:      pipeline.Years(h.ds.Observations),
	})
}
