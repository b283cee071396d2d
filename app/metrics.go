package app

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"figstats/internal/errors"
)

// Pipeline names used as metric labels
const (
	PipelineDensity   = "density"
	PipelineQuantile  = "qq"
	PipelineTransform = "transform"
	PipelineApply     = "apply"
	PipelineDescribe  = "describe"
)

// Metrics counts and times pipeline runs
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the pipeline collectors on reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "figstats_pipeline_runs_total",
			Help: "Pipeline runs by outcome (ok or lower-cased error code).",
		}, []string{"pipeline", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "figstats_pipeline_duration_seconds",
			Help:    "Wall time of pipeline runs.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"pipeline"}),
	}
	for _, c := range []prometheus.Collector{m.runs, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(errors.InternalError(err.Error()), "failed to register metrics")
		}
	}
	return m, nil
}

func (m *Metrics) observe(pipeline string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(pipeline, Outcome(err)).Inc()
	m.duration.WithLabelValues(pipeline).Observe(time.Since(start).Seconds())
}

// Outcome is the metric label for a run's result
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(errors.GetCode(err))
}
