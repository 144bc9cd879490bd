// Package listener provides ready-made workflow lifecycle listeners:
// structured logging (zap), Prometheus metrics, and OpenTelemetry tracing.
package listener

import (
	"go.uber.org/zap"

	"github.com/BaSui01/flowkit/workflow"
)

// Logging emits a structured log line around every workflow execution.
type Logging struct {
	logger *zap.Logger
}

// NewLogging creates a logging listener.
func NewLogging(logger *zap.Logger) *Logging {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logging{logger: logger.With(zap.String("component", "workflow"))}
}

// OnStart logs the beginning of an execution.
func (l *Logging) OnStart(name string, wc *workflow.Context) {
	l.logger.Debug("workflow started",
		zap.String("workflow", name),
		zap.String("run_id", wc.RunID()),
	)
}

// OnSuccess logs a successful execution with its duration.
func (l *Logging) OnSuccess(name string, wc *workflow.Context, result *workflow.Result) {
	l.logger.Info("workflow succeeded",
		zap.String("workflow", name),
		zap.String("run_id", wc.RunID()),
		zap.Duration("duration", result.Duration()),
	)
}

// OnFailure logs a failed execution with its causing error.
func (l *Logging) OnFailure(name string, wc *workflow.Context, result *workflow.Result) {
	l.logger.Warn("workflow failed",
		zap.String("workflow", name),
		zap.String("run_id", wc.RunID()),
		zap.Duration("duration", result.Duration()),
		zap.Error(result.Err),
	)
}
