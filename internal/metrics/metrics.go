// Package metrics exports device capability values and poller health as
// Prometheus gauges and counters.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "toon"

// Metrics implements the capability, availability and fetch observers of the
// service layer.
type Metrics struct {
	registry *prometheus.Registry

	capability    *prometheus.GaugeVec
	available     *prometheus.GaugeVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		capability: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "capability_value",
				Help:      "Latest numeric value reported for a device capability.",
			},
			[]string{"device_id", "capability"},
		),
		available: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "device_available",
				Help:      "Device availability (1 = reachable, 0 = unreachable).",
			},
			[]string{"device_id"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "Status fetches by endpoint and outcome.",
			},
			[]string{"device_id", "kind", "result"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of status fetches.",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
	}
	m.registry.MustRegister(m.capability, m.available, m.fetches, m.fetchDuration)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetCapability records numeric values; strings and nil clear the series.
func (m *Metrics) SetCapability(_ context.Context, deviceID, capability string, value any) {
	v, ok := toFloat(value)
	if !ok {
		m.capability.DeleteLabelValues(deviceID, capability)
		return
	}
	m.capability.WithLabelValues(deviceID, capability).Set(v)
}

func (m *Metrics) MarkReachable(_ context.Context, deviceID string) {
	m.available.WithLabelValues(deviceID).Set(1)
}

func (m *Metrics) MarkUnreachable(_ context.Context, deviceID, _ string) {
	m.available.WithLabelValues(deviceID).Set(0)
}

// SetAvailable seeds the availability gauge for a restored device.
func (m *Metrics) SetAvailable(deviceID string, available bool) {
	v := 0.0
	if available {
		v = 1
	}
	m.available.WithLabelValues(deviceID).Set(v)
}

func (m *Metrics) ObserveFetch(deviceID, kind string, ok bool, took time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.fetches.WithLabelValues(deviceID, kind, result).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// ForgetDevice drops every series of a removed device.
func (m *Metrics) ForgetDevice(deviceID string) {
	labels := prometheus.Labels{"device_id": deviceID}
	m.capability.DeletePartialMatch(labels)
	m.available.DeletePartialMatch(labels)
	m.fetches.DeletePartialMatch(labels)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
