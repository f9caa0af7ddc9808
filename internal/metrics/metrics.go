// Package metrics holds the Prometheus collectors albumgrid exports.
//
// All helper methods are safe to call on a nil *Metrics, so components can
// take metrics as an optional dependency.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cover fetch outcomes.
const (
	CoverOK          = "ok"
	CoverPlaceholder = "placeholder"
)

// Metrics tracks chart rendering and HTTP traffic.
type Metrics struct {
	// ChartsRendered counts chart generations.
	// Labels: status (success|client_error|upstream_error|error)
	ChartsRendered *prometheus.CounterVec

	// ChartDuration measures end-to-end chart generation in seconds.
	ChartDuration prometheus.Histogram

	// CoverFetches counts cover resolutions.
	// Labels: outcome (ok|placeholder)
	CoverFetches *prometheus.CounterVec

	// HTTPRequestDuration measures HTTP request latency.
	// Labels: method, route, status_code
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on promhttp.Handler().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ChartsRendered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "albumgrid_charts_total",
				Help: "Total number of chart generations by status",
			},
			[]string{"status"},
		),

		ChartDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "albumgrid_chart_duration_seconds",
				Help:    "Duration of chart generation in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		CoverFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "albumgrid_cover_fetches_total",
				Help: "Total number of cover resolutions by outcome",
			},
			[]string{"outcome"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "albumgrid_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"method", "route", "status_code"},
		),
	}
}

// CoverFetched records one cover resolution.
func (m *Metrics) CoverFetched(outcome string) {
	if m == nil {
		return
	}
	m.CoverFetches.WithLabelValues(outcome).Inc()
}

// ChartRendered records one chart generation.
func (m *Metrics) ChartRendered(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ChartsRendered.WithLabelValues(status).Inc()
	if status == "success" {
		m.ChartDuration.Observe(d.Seconds())
	}
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
