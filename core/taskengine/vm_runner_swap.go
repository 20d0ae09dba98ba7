package taskengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/AvaProtocol/avax-workflow/model"
)

// SwapTokenProcessor records the requested swap. No swap is executed on chain.
type SwapTokenProcessor struct {
	*CommonProcessor
}

func NewSwapTokenProcessor(p *CommonProcessor) *SwapTokenProcessor {
	return &SwapTokenProcessor{CommonProcessor: p}
}

func (p *SwapTokenProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.SwapTokenData) (*StepResult, error) {
	intent := map[string]any{
		"tokenAddress": strings.TrimSpace(data.TokenAddress),
		"to":           strings.TrimSpace(data.To),
		"amount":       strings.TrimSpace(data.Amount),
		"from":         ec.Account.Hex(),
		"status":       "intent_recorded",
	}

	p.logger.Info("swap intent recorded", "node_id", nodeID, "token", intent["tokenAddress"], "amount", intent["amount"])

	result := &StepResult{
		Effect: fmt.Sprintf("swap intent recorded for %v", intent["tokenAddress"]),
		Output: intent,
	}
	return result.Write(StoreKey("swap", nodeID), intent), nil
}
