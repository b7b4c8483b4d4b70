package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/comparison", "200"))
	RecordAPIRequest("GET", "/api/v1/comparison", http.StatusOK, 3*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/comparison", "200"))
	assert.Equal(t, before+1, after)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestRecordDatasetLoad(t *testing.T) {
	RecordDatasetLoad("loaded", 3500, 170)
	assert.Equal(t, 3500.0, testutil.ToFloat64(DatasetRows.WithLabelValues("observations")))
	assert.Equal(t, 170.0, testutil.ToFloat64(DatasetRows.WithLabelValues("predictions")))

	// errors leave the gauges untouched
	RecordDatasetLoad("error", 0, 0)
	assert.Equal(t, 3500.0, testutil.ToFloat64(DatasetRows.WithLabelValues("observations")))
}

func TestRecordExport(t *testing.T) {
	before := testutil.ToFloat64(ExportRows.WithLabelValues("csv"))
	RecordExport("csv", "completed", 12, time.Second)
	assert.Equal(t, before+12, testutil.ToFloat64(ExportRows.WithLabelValues("csv")))
}

func TestHandlerServesMetrics(t *testing.T) {
	RecordView("comparison", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sdg7_view_computations_total")
}
