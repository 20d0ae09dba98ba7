package taskengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/AvaProtocol/avax-workflow/pkg/logger"
)

func TestMultiSinkFansOut(t *testing.T) {
	log := logger.NewMemoryLogger()
	collected := &CollectingSink{}
	sink := MultiSink{NewLoggerSink(log), collected}

	sink.Report(model.NodeOutcome{NodeID: "a", NodeType: model.NodeTypeSetData, Status: model.StepStatusSucceeded})
	sink.Report(model.NodeOutcome{NodeID: "b", NodeType: model.NodeTypeSendAvax, Status: model.StepStatusSkipped, Message: "to is required"})
	sink.Report(model.NodeOutcome{NodeID: "c", NodeType: model.NodeTypeAPICall, Status: model.StepStatusFailed, Message: "timeout"})

	run := model.NewRunOutcome()
	sink.ReportRun(run)

	require.Len(t, collected.Steps(), 3)
	assert.Equal(t, "b", collected.Steps()[1].NodeID)
	require.Len(t, collected.Runs(), 1)
	assert.Equal(t, run.RunID, collected.Runs()[0].RunID)

	assert.True(t, log.Contains("info", "node succeeded"))
	assert.True(t, log.Contains("warn", "node skipped"))
	assert.True(t, log.Contains("error", "node failed"))
	assert.True(t, log.Contains("info", "workflow run finished"))
}
