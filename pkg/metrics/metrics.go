// Package metrics exposes the tracking pipeline's counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/Robogera/track/pkg/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "track"

// Collectors on a private registry, safe for concurrent use
type Metrics struct {
	LinesRead     prometheus.Counter
	LinesRejected prometheus.Counter
	Published     prometheus.Counter
	PublishErrors prometheus.Counter

	frames       *prometheus.CounterVec
	observations *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	created      *prometheus.CounterVec
	deleted      *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	live         *prometheus.GaugeVec
	emitted      *prometheus.GaugeVec
	latency      *prometheus.HistogramVec

	registry *prometheus.Registry
}

func counterVec(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, []string{"stream"})
}

func gaugeVec(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, []string{"stream"})
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

func New() *Metrics {
	m := &Metrics{
		LinesRead:     counter("input_lines_total", "Input lines read"),
		LinesRejected: counter("input_lines_rejected_total", "Input lines that could not be parsed"),
		Published:     counter("mqtt_published_total", "Messages published over MQTT"),
		PublishErrors: counter("mqtt_publish_errors_total", "Failed MQTT publishes"),

		frames:       counterVec("frames_total", "Frames passed to the tracker"),
		observations: counterVec("observations_total", "Observations passed to the tracker"),
		rejected:     counterVec("observations_rejected_total", "Observations failing validation"),
		created:      counterVec("tracks_created_total", "Tracks created"),
		deleted:      counterVec("tracks_deleted_total", "Tracks deleted after max_age"),
		dropped:      counterVec("tracks_dropped_total", "Tracks dropped on a non-finite prediction"),
		live:         gaugeVec("tracks_live", "Live tracks after the last frame"),
		emitted:      gaugeVec("tracks_emitted", "Confirmed tracks reported for the last frame"),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_seconds",
			Help:      "Time spent in a single tracker update",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14),
		}, []string{"stream"}),

		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.LinesRead, m.LinesRejected, m.Published, m.PublishErrors,
		m.frames, m.observations, m.rejected, m.created, m.deleted, m.dropped,
		m.live, m.emitted, m.latency,
	)
	return m
}

// Records the outcome of one Tracker.Update
func (m *Metrics) Observe(stream string, report tracker.Report, took time.Duration) {
	m.frames.WithLabelValues(stream).Inc()
	m.observations.WithLabelValues(stream).Add(float64(report.Observations))
	m.rejected.WithLabelValues(stream).Add(float64(report.Rejected))
	m.created.WithLabelValues(stream).Add(float64(report.Created))
	m.deleted.WithLabelValues(stream).Add(float64(report.Deleted))
	m.dropped.WithLabelValues(stream).Add(float64(report.Dropped))
	m.live.WithLabelValues(stream).Set(float64(report.Live))
	m.emitted.WithLabelValues(stream).Set(float64(report.Emitted))
	m.latency.WithLabelValues(stream).Observe(took.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
