package taskengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AvaProtocol/avax-workflow/model"
)

const DataTypeJSON = "json"

type SetDataProcessor struct {
	*CommonProcessor
}

func NewSetDataProcessor(p *CommonProcessor) *SetDataProcessor {
	return &SetDataProcessor{CommonProcessor: p}
}

func (p *SetDataProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.SetDataData) (*StepResult, error) {
	key := strings.TrimSpace(data.StorageKey)

	var value any
	useJSON := data.DataType == DataTypeJSON || (data.InputValue == "" && data.InputJSON != "")
	if useJSON {
		raw := data.InputJSON
		if strings.TrimSpace(raw) == "" {
			raw = data.InputValue
		}
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, WrapStructuredError(InvalidJSON, err, "inputJson is not valid JSON")
		}
	} else {
		value = data.InputValue
	}

	result := &StepResult{
		Effect: fmt.Sprintf("stored %s", key),
		Output: value,
	}
	return result.Write(key, value), nil
}

type GetDataProcessor struct {
	*CommonProcessor
}

func NewGetDataProcessor(p *CommonProcessor) *GetDataProcessor {
	return &GetDataProcessor{CommonProcessor: p}
}

func (p *GetDataProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.GetDataData) (*StepResult, error) {
	key := strings.TrimSpace(data.StorageKey)

	value, ok := ec.Store.Get(key)
	if !ok {
		return nil, NewStructuredError(
			DataNotFound,
			fmt.Sprintf("no data stored at %s", key),
			map[string]interface{}{"storageKey": key},
		)
	}
	value = deepCopy(value)

	if outputKey := strings.TrimSpace(data.OutputKey); outputKey != "" {
		obj, isObject := value.(map[string]any)
		if isObject {
			inner, found := obj[outputKey]
			if !found {
				return nil, NewStructuredError(
					DataNotFound,
					fmt.Sprintf("%s has no property %s", key, outputKey),
					map[string]interface{}{"storageKey": key, "outputKey": outputKey},
				)
			}
			value = inner
		} else {
			p.logger.Debug("outputKey ignored on non object value", "node_id", nodeID, "storage_key", key)
		}
	}

	result := &StepResult{
		Effect: fmt.Sprintf("read %s", key),
		Output: value,
	}
	return result.Write(StoreKey("data", nodeID), value), nil
}
