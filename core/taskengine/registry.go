package taskengine

import (
	"context"
	"fmt"
	"time"

	"github.com/AvaProtocol/avax-workflow/model"
	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
)

// StepResult is what a node runner hands back to the engine. Writes are only
// merged into the store when the runner succeeds.
type StepResult struct {
	Effect string
	Output any
	Writes []KV
}

func (r *StepResult) Write(key string, value any) *StepResult {
	r.Writes = append(r.Writes, KV{Key: key, Value: value})
	return r
}

type nodeRunner interface {
	Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data model.NodeData) (*StepResult, error)
}

// runnerFunc adapts a runner taking its concrete payload type
type runnerFunc[T model.NodeData] func(ctx context.Context, ec *ExecutionContext, nodeID string, data T) (*StepResult, error)

func (f runnerFunc[T]) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data model.NodeData) (*StepResult, error) {
	typed, ok := data.(T)
	if !ok {
		return nil, NewStructuredError(ValidationFailed, fmt.Sprintf("unexpected payload %T for node %s", data, nodeID))
	}
	return f(ctx, ec, nodeID, typed)
}

// CommonProcessor holds what every runner shares: the ports and engine settings
type CommonProcessor struct {
	ports       Ports
	logger      sdklogging.Logger
	explorerURL string
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
}

var runnerFactories = map[model.NodeType]func(p *CommonProcessor) nodeRunner{
	model.NodeTypeBlockTrigger: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.BlockTriggerData](NewBlockTriggerProcessor(p).Execute)
	},
	model.NodeTypeTimeTrigger: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.TimeTriggerData](NewTimeTriggerProcessor(p).Execute)
	},
	model.NodeTypePriceTrigger: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.PriceTriggerData](NewPriceTriggerProcessor(p).Execute)
	},
	model.NodeTypeNFTPriceTrigger: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.NFTPriceTriggerData](NewNFTPriceTriggerProcessor(p).Execute)
	},
	model.NodeTypeSendAvax: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.SendAvaxData](NewSendAvaxProcessor(p).Execute)
	},
	model.NodeTypeSwapToken: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.SwapTokenData](NewSwapTokenProcessor(p).Execute)
	},
	model.NodeTypeContractCall: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.ContractCallData](NewContractCallProcessor(p).Execute)
	},
	model.NodeTypeAPICall: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.APICallData](NewAPICallProcessor(p).Execute)
	},
	model.NodeTypeShowData: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.ShowDataData](NewShowDataProcessor(p).Execute)
	},
	model.NodeTypeWhatsApp: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.WhatsAppData](NewWhatsAppProcessor(p).Execute)
	},
	model.NodeTypeAI: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.AIData](NewAIProcessor(p).Execute)
	},
	model.NodeTypeCompare: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.CompareData](NewCompareProcessor(p).Execute)
	},
	model.NodeTypeFilter: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.FilterData](NewFilterProcessor(p).Execute)
	},
	model.NodeTypeDelay: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.DelayData](NewDelayProcessor(p).Execute)
	},
	model.NodeTypeSetData: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.SetDataData](NewSetDataProcessor(p).Execute)
	},
	model.NodeTypeGetData: func(p *CommonProcessor) nodeRunner {
		return runnerFunc[*model.GetDataData](NewGetDataProcessor(p).Execute)
	},
}

func newRegistry(p *CommonProcessor) map[model.NodeType]nodeRunner {
	registry := make(map[model.NodeType]nodeRunner, len(runnerFactories))
	for t, factory := range runnerFactories {
		registry[t] = factory(p)
	}
	return registry
}

// SupportedNodeType reports whether the engine has a runner for t
func SupportedNodeType(t model.NodeType) bool {
	_, ok := runnerFactories[t]
	return ok
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
