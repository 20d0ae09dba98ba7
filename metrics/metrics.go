package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsGenerator interface {
	IncRun(status string)
	IncNodeExecution(nodeType, status string)
	ObserveNodeDuration(nodeType string, seconds float64)
	AddActiveTime(seconds float64)
}

// WorkflowMetrics contains instrumented metrics that are updated by the engine
// for every run and every node it processes
type WorkflowMetrics struct {
	runs           *prometheus.CounterVec
	nodeExecutions *prometheus.CounterVec
	nodeDuration   *prometheus.HistogramVec
	activeSeconds  prometheus.Counter
}

const namespace = "workflow"

func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	return &WorkflowMetrics{
		runs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "The number of workflow runs by final status",
			}, []string{"status"}),

		nodeExecutions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_executions_total",
				Help:      "The number of processed nodes by node type and outcome",
			}, []string{"type", "status"}),

		nodeDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "node_duration_seconds",
				Help:      "Time spent in a node runner, delays included",
				Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
			}, []string{"type"}),

		activeSeconds: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "active_seconds_total",
				Help:      "Time spent executing workflows, excluding delay nodes",
			}),
	}
}

func (m *WorkflowMetrics) IncRun(status string) {
	m.runs.WithLabelValues(status).Inc()
}

func (m *WorkflowMetrics) IncNodeExecution(nodeType, status string) {
	m.nodeExecutions.WithLabelValues(nodeType, status).Inc()
}

func (m *WorkflowMetrics) ObserveNodeDuration(nodeType string, seconds float64) {
	m.nodeDuration.WithLabelValues(nodeType).Observe(seconds)
}

func (m *WorkflowMetrics) AddActiveTime(seconds float64) {
	m.activeSeconds.Add(seconds)
}

// NoopMetrics is used when metrics are disabled
type NoopMetrics struct{}

func (NoopMetrics) IncRun(string)                       {}
func (NoopMetrics) IncNodeExecution(string, string)     {}
func (NoopMetrics) ObserveNodeDuration(string, float64) {}
func (NoopMetrics) AddActiveTime(float64)               {}
