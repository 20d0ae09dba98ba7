package taskengine

import (
	"sync"

	"github.com/AvaProtocol/avax-workflow/model"
	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
)

// LoggerSink writes every outcome to the structured logger
type LoggerSink struct {
	logger sdklogging.Logger
}

func NewLoggerSink(logger sdklogging.Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

func (s *LoggerSink) Report(o model.NodeOutcome) {
	switch o.Status {
	case model.StepStatusSucceeded:
		s.logger.Info("node succeeded", "node_id", o.NodeID, "type", o.NodeType, "effect", o.Effect)
	case model.StepStatusSkipped:
		s.logger.Warn("node skipped", "node_id", o.NodeID, "type", o.NodeType, "kind", o.ErrorKind, "reason", o.Message)
	default:
		s.logger.Error("node failed", "node_id", o.NodeID, "type", o.NodeType, "kind", o.ErrorKind, "error", o.Message)
	}
}

func (s *LoggerSink) ReportRun(r *model.RunOutcome) {
	summary := r.Summary()
	s.logger.Info("workflow run finished",
		"run_id", r.RunID,
		"status", r.Status,
		"error", r.Error,
		"succeeded", summary[model.StepStatusSucceeded],
		"skipped", summary[model.StepStatusSkipped],
		"failed", summary[model.StepStatusFailed],
		"active_ms", r.ActiveMillis)
}

// MultiSink fans outcomes out to several sinks in order
type MultiSink []OutcomeSink

func (m MultiSink) Report(o model.NodeOutcome) {
	for _, s := range m {
		s.Report(o)
	}
}

func (m MultiSink) ReportRun(r *model.RunOutcome) {
	for _, s := range m {
		s.ReportRun(r)
	}
}

type NoopSink struct{}

func (NoopSink) Report(model.NodeOutcome)    {}
func (NoopSink) ReportRun(*model.RunOutcome) {}

// CollectingSink keeps everything it receives in memory
type CollectingSink struct {
	mu    sync.Mutex
	steps []model.NodeOutcome
	runs  []*model.RunOutcome
}

func (c *CollectingSink) Report(o model.NodeOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, o)
}

func (c *CollectingSink) ReportRun(r *model.RunOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, r)
}

func (c *CollectingSink) Steps() []model.NodeOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.NodeOutcome{}, c.steps...)
}

func (c *CollectingSink) Runs() []*model.RunOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*model.RunOutcome{}, c.runs...)
}
