package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RefreshMetrics instruments the background refresh loop.
type RefreshMetrics struct {
	refreshDuration *prometheus.HistogramVec
	refreshTotal    *prometheus.CounterVec
	snapshotAge     *prometheus.GaugeVec
	snapshotItems   *prometheus.GaugeVec
}

// NewRefreshMetrics registers the refresh instruments on the given registry.
func NewRefreshMetrics(reg *prometheus.Registry, cfg Config) *RefreshMetrics {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "hydrolink"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	refreshDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "hydrolink_refresh_duration_seconds",
			Help:        "Duration of one category fetch against the upstream portal.",
			Buckets:     []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			ConstLabels: constLabels,
		},
		[]string{"category", "result"}, // result: success | failure
	)

	refreshTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "hydrolink_refresh_total",
			Help:        "Total category fetch attempts by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"category", "result"},
	)

	snapshotAge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "hydrolink_snapshot_age_seconds",
			Help:        "Age of the last successful snapshot per category.",
			ConstLabels: constLabels,
		},
		[]string{"category"},
	)

	snapshotItems := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "hydrolink_snapshot_items",
			Help:        "Number of records in the current snapshot per category.",
			ConstLabels: constLabels,
		},
		[]string{"category"},
	)

	reg.MustRegister(
		refreshDuration,
		refreshTotal,
		snapshotAge,
		snapshotItems,
	)

	return &RefreshMetrics{
		refreshDuration: refreshDuration,
		refreshTotal:    refreshTotal,
		snapshotAge:     snapshotAge,
		snapshotItems:   snapshotItems,
	}
}

func (m *RefreshMetrics) ObserveRefresh(category, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.refreshDuration.WithLabelValues(category, result).Observe(duration.Seconds())
	m.refreshTotal.WithLabelValues(category, result).Inc()
}

func (m *RefreshMetrics) SetSnapshotItems(category string, count int) {
	if m == nil {
		return
	}
	m.snapshotItems.WithLabelValues(category).Set(float64(count))
}

func (m *RefreshMetrics) SetSnapshotAge(category string, age time.Duration) {
	if m == nil {
		return
	}
	seconds := age.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.snapshotAge.WithLabelValues(category).Set(seconds)
}
