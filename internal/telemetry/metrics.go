// Package telemetry exposes Prometheus instrumentation for the bar.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hlbar"

// Metrics holds the bar's instruments. A nil *Metrics is a valid no-op.
type Metrics struct {
	redrawRequests  prometheus.Counter
	coalesced       prometheus.Counter
	frames          prometheus.Counter
	frameDuration   prometheus.Histogram
	moduleErrors    *prometheus.CounterVec
	watcherRestarts *prometheus.CounterVec
}

// NewMetrics creates the instruments and registers them with reg.
// If reg is nil, it returns nil (no-op metrics).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		redrawRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redraw_requests_total",
			Help:      "Redraw requests issued by producers.",
		}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redraw_requests_coalesced_total",
			Help:      "Redraw requests that found a redraw already pending.",
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Completed draw passes.",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent rendering and publishing one frame.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		moduleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "module_errors_total",
			Help:      "Module render calls whose contribution was skipped.",
		}, []string{"module"}),
		watcherRestarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watcher_restarts_total",
			Help:      "Restarts of external watcher processes.",
		}, []string{"watcher"}),
	}

	for _, c := range []prometheus.Collector{
		m.redrawRequests, m.coalesced, m.frames, m.frameDuration, m.moduleErrors, m.watcherRestarts,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RedrawRequested records one redraw request.
func (m *Metrics) RedrawRequested(coalesced bool) {
	if m == nil {
		return
	}
	m.redrawRequests.Inc()
	if coalesced {
		m.coalesced.Inc()
	}
}

// FrameRendered records a completed draw pass.
func (m *Metrics) FrameRendered(d time.Duration) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.frameDuration.Observe(d.Seconds())
}

// ModuleFailed records a skipped module contribution.
func (m *Metrics) ModuleFailed(module string) {
	if m == nil {
		return
	}
	m.moduleErrors.WithLabelValues(module).Inc()
}

// WatcherRestarted records a restart of the named watcher process.
func (m *Metrics) WatcherRestarted(watcher string) {
	if m == nil {
		return
	}
	m.watcherRestarts.WithLabelValues(watcher).Inc()
}
