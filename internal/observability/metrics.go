package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the advisory connector.
type Metrics struct {
	RefreshTotal *prometheus.CounterVec // labels: outcome={success,error}
	RefreshAge   prometheus.Gauge
	EventsCached prometheus.Gauge
	WeatherOK    prometheus.Gauge

	AlertsGenerated    prometheus.Counter
	AttentionScore     prometheus.Gauge
	SpeedFactor        prometheus.Gauge
	InferenceDuration  prometheus.Histogram
	WatchNotifications prometheus.Counter
}

// NewMetrics creates and registers all connector metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefreshTotal,
		m.RefreshAge,
		m.EventsCached,
		m.WeatherOK,
		m.AlertsGenerated,
		m.AttentionScore,
		m.SpeedFactor,
		m.InferenceDuration,
		m.WatchNotifications,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minervas",
			Name:      "cache_refresh_total",
			Help:      "Cache refresh attempts by outcome.",
		}, []string{"outcome"}),
		RefreshAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minervas",
			Name:      "cache_last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful cache refresh.",
		}),
		EventsCached: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minervas",
			Name:      "events_cached",
			Help:      "Number of traffic events in the cache after the last refresh.",
		}),
		WeatherOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minervas",
			Name:      "weather_available",
			Help:      "1 when a weather reading is cached, 0 when the last fetch soft-failed.",
		}),
		AlertsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minervas",
			Name:      "alerts_generated_total",
			Help:      "Total advisory alerts emitted.",
		}),
		AttentionScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minervas",
			Name:      "attention_score",
			Help:      "Last computed attention score.",
		}),
		SpeedFactor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minervas",
			Name:      "speed_factor",
			Help:      "Last recommended speed factor.",
		}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "minervas",
			Name:      "inference_duration_seconds",
			Help:      "Duration of one fuzzy inference and defuzzification pass.",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}),
		WatchNotifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minervas",
			Name:      "watch_notifications_total",
			Help:      "Important events delivered to live watch callbacks.",
		}),
	}
}
