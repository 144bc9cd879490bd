package listener

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/BaSui01/flowkit/workflow"
)

// Metrics records workflow execution counts and durations in Prometheus
// collectors.
type Metrics struct {
	executionsTotal   *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
}

// NewMetrics creates a metrics listener registering its collectors with reg
// under the given namespace. A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		executionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_executions_total",
				Help:      "Total number of workflow executions by outcome",
			},
			[]string{"workflow", "status"},
		),
		executionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workflow_execution_duration_seconds",
				Help:      "Workflow execution duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"workflow"},
		),
	}
}

// OnStart implements workflow.Listener.
func (m *Metrics) OnStart(name string, wc *workflow.Context) {}

// OnSuccess counts a successful execution and observes its duration.
func (m *Metrics) OnSuccess(name string, wc *workflow.Context, result *workflow.Result) {
	m.executionsTotal.WithLabelValues(name, string(workflow.StatusSuccess)).Inc()
	m.executionDuration.WithLabelValues(name).Observe(result.Duration().Seconds())
}

// OnFailure counts a failed execution and observes its duration.
func (m *Metrics) OnFailure(name string, wc *workflow.Context, result *workflow.Result) {
	m.executionsTotal.WithLabelValues(name, string(workflow.StatusFailed)).Inc()
	m.executionDuration.WithLabelValues(name).Observe(result.Duration().Seconds())
}
