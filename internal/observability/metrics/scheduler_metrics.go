package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SchedulerMetrics counts automation job executions and outcomes.
type SchedulerMetrics struct {
	jobRuns      *prometheus.CounterVec
	jobErrors    *prometheus.CounterVec
	jobDurations *prometheus.HistogramVec
	processed    *prometheus.CounterVec
}

var (
	schedulerOnce sync.Once
	scheduler     *SchedulerMetrics
)

// Scheduler returns the process-wide scheduler metrics, registering them on
// first use.
func Scheduler() *SchedulerMetrics {
	schedulerOnce.Do(func() {
		scheduler = newSchedulerMetrics(prometheus.DefaultRegisterer)
	})
	return scheduler
}

func newSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	factory := promauto.With(reg)
	return &SchedulerMetrics{
		jobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetflow_automation_job_runs_total",
			Help: "Number of automation job executions.",
		}, []string{"job"}),
		jobErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetflow_automation_job_errors_total",
			Help: "Number of automation job executions that ended in error.",
		}, []string{"job"}),
		jobDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleetflow_automation_job_duration_seconds",
			Help:    "Wall-clock duration of automation job executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		processed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetflow_automation_records_processed_total",
			Help: "Records touched by automation jobs.",
		}, []string{"job"}),
	}
}

func (m *SchedulerMetrics) IncJobRun(job string) {
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) IncJobError(job string) {
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveJobDuration(job string, d time.Duration) {
	m.jobDurations.WithLabelValues(job).Observe(d.Seconds())
}

func (m *SchedulerMetrics) AddProcessed(job string, count int) {
	if count <= 0 {
		return
	}
	m.processed.WithLabelValues(job).Add(float64(count))
}
