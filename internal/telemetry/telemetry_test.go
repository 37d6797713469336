package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	require.Nil(t, m)

	assert.NotPanics(t, func() {
		m.RedrawRequested(true)
		m.FrameRendered(time.Millisecond)
		m.ModuleFailed("clock")
		m.WatcherRestarted("tags")
	})
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.RedrawRequested(false)
	m.RedrawRequested(true)
	m.RedrawRequested(true)
	m.FrameRendered(3 * time.Millisecond)
	m.ModuleFailed("battery")
	m.WatcherRestarted("tray")
	m.WatcherRestarted("tray")

	families, err := reg.Gather()
	require.NoError(t, err)
	byName := map[string]*dto.MetricFamily{}
	for _, f := range families {
		byName[f.GetName()] = f
	}

	assert.Equal(t, 3.0, byName["hlbar_redraw_requests_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, byName["hlbar_redraw_requests_coalesced_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, byName["hlbar_frames_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, uint64(1), byName["hlbar_frame_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, 1.0, byName["hlbar_module_errors_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, byName["hlbar_watcher_restarts_total"].GetMetric()[0].GetCounter().GetValue())
}

func TestNewMetricsRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestServerHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	m.FrameRendered(time.Millisecond)

	h := NewServer("127.0.0.1:0", reg, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "hlbar_frames_total 1"))
}
