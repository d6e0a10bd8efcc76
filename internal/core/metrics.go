// AngelaMos | 2026
// metrics.go

package core

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "steamybeans"

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec
	DBOpDuration     *prometheus.HistogramVec
	DBErrorsTotal    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method"},
		),
		DBOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "db",
				Name:      "operation_duration_seconds",
				Help:      "Document store latency by logical operation.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"op", "status"},
		),
		DBErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "Document store errors by logical operation and class.",
			},
			[]string{"op", "class"},
		),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestsDuration,
		m.InFlight,
		m.DBOpDuration,
		m.DBErrorsTotal,
	)

	return m
}

// ObserveDB records one document store call. Safe on a nil receiver.
func (m *Metrics) ObserveDB(op string, start time.Time, err error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = "error"
		m.DBErrorsTotal.WithLabelValues(op, errorClass(err)).Inc()
	}

	m.DBOpDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateKey):
		return "duplicate"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}
