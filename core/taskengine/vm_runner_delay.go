package taskengine

import (
	"context"
	"fmt"
	"time"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/shopspring/decimal"
)

type DelayProcessor struct {
	*CommonProcessor
}

func NewDelayProcessor(p *CommonProcessor) *DelayProcessor {
	return &DelayProcessor{CommonProcessor: p}
}

// DelayDuration converts a decimal number of seconds into a duration
func DelayDuration(seconds string) (time.Duration, error) {
	d, ok := parseDecimal(seconds)
	if !ok || d.IsNegative() {
		return 0, fmt.Errorf("invalid delay %q", seconds)
	}
	return time.Duration(d.Mul(decimal.NewFromInt(int64(time.Second))).IntPart()), nil
}

func (p *DelayProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.DelayData) (*StepResult, error) {
	wait, err := DelayDuration(data.DelayTime)
	if err != nil {
		return nil, WrapStructuredError(InvalidParameters, err, "cannot parse delayTime")
	}

	p.logger.Info("delaying workflow", "node_id", nodeID, "duration", wait.String())

	if err := p.sleep(ctx, wait); err != nil {
		return nil, WrapStructuredError(ExternalCallFailed, err, "delay interrupted")
	}

	return &StepResult{
		Effect: fmt.Sprintf("waited %s", wait),
		Output: map[string]any{"delayMs": wait.Milliseconds()},
	}, nil
}
