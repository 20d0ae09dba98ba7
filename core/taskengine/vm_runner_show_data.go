package taskengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AvaProtocol/avax-workflow/model"
)

const (
	defaultDisplayTitle = "Data"
	noDataMessage       = "No data available"
)

type ShowDataProcessor struct {
	*CommonProcessor
}

func NewShowDataProcessor(p *CommonProcessor) *ShowDataProcessor {
	return &ShowDataProcessor{CommonProcessor: p}
}

// resolveShowData picks the value to display:
// wildcard, then the first incoming edge, then the exact key, then the last
// written entry when no key was given.
func resolveShowData(ec *ExecutionContext, nodeID, dataKey string) (any, string, bool) {
	if dataKey == WildcardKey {
		return ec.Store.Snapshot(), WildcardKey, true
	}

	if key, value, ok := ec.ResolveInput(nodeID); ok {
		return deepCopy(value), key, true
	}

	if dataKey != "" {
		if value, ok := ec.Store.Get(dataKey); ok {
			return deepCopy(value), dataKey, true
		}
		return nil, "", false
	}

	if key, value, ok := ec.Store.Last(); ok {
		return deepCopy(value), key, true
	}
	return nil, "", false
}

func (p *ShowDataProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.ShowDataData) (*StepResult, error) {
	dataKey := strings.TrimSpace(data.DataKey)

	title := strings.TrimSpace(data.DisplayText)
	if title == "" {
		title = defaultDisplayTitle
	}

	value, source, found := resolveShowData(ec, nodeID, dataKey)
	if !found {
		p.logger.Info("no data to show", "node_id", nodeID, "data_key", dataKey)
		return &StepResult{
			Effect: fmt.Sprintf("%s: %s", title, noDataMessage),
			Output: map[string]any{"title": title, "found": false},
		}, nil
	}

	// refine into a property when the key names one
	if obj, ok := value.(map[string]any); ok && dataKey != "" && dataKey != WildcardKey {
		if prop, ok := obj[dataKey]; ok {
			value = prop
		}
	}

	rendered := fmt.Sprintf("%s:\n%s", title, renderPretty(value))

	return &StepResult{
		Effect: rendered,
		Output: map[string]any{
			"title":  title,
			"source": source,
			"found":  true,
			"value":  value,
		},
	}, nil
}

func renderPretty(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(body)
}
