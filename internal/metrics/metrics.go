package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SectorsCommitted  *prometheus.CounterVec
	FeatureUpdates    *prometheus.CounterVec
	GesturesDiscarded *prometheus.CounterVec
	SinkErrors        *prometheus.CounterVec
	PreviewFrames     prometheus.Counter
	PromptSeconds     *prometheus.HistogramVec
	ActiveSessions    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SectorsCommitted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "shooter_sectors_committed_total",
			Help: "Total number of sectors inserted into a layer.",
		}, []string{"layer"}),
		FeatureUpdates: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "shooter_feature_updates_total",
			Help: "Total number of feature updates and removals, by context action.",
		}, []string{"action"}),
		GesturesDiscarded: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "shooter_gestures_discarded_total",
			Help: "Total number of gestures that ended without a commit.",
		}, []string{"reason"}),
		SinkErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "shooter_sink_errors_total",
			Help: "Total number of errors returned by the feature sink.",
		}, []string{"op"}),
		PreviewFrames: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "shooter_preview_frames_total",
			Help: "Total number of preview frames rendered while dragging.",
		}),
		PromptSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shooter_prompt_duration_seconds",
			Help:    "Time spent waiting for the operator to answer a prompt.",
			Buckets: prometheus.DefBuckets,
		}, []string{"purpose"}),
		ActiveSessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "shooter_active_sessions",
			Help: "Current number of authoring sessions being replayed.",
		}),
	}
}
