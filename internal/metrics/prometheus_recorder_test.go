package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveTransformDuration("syntax_highlight", 3*time.Millisecond)
	pr.IncTransformResult("syntax_highlight", ResultSuccess)
	pr.IncTransformResult("syntax_highlight", ResultSuccess)
	pr.ObservePageDuration(10 * time.Millisecond)
	pr.IncPageResult(ResultFailed)
	pr.ObserveIndexBuild(50*time.Millisecond, 3, ResultSuccess)
	pr.ObserveIndexBuild(0, 0, ResultSkipped)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.transformResults.WithLabelValues("syntax_highlight", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.pageResults.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(pr.indexEntries), "skipped signals must not overwrite the entry gauge")
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.indexResults.WithLabelValues("skipped")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveTransformDuration("x", time.Millisecond)
	pr.IncPageResult(ResultSuccess)
	pr.ObserveIndexBuild(time.Millisecond, 1, ResultSuccess)
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncPageResult(ResultSuccess)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "docpost_page_results_total"))
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
