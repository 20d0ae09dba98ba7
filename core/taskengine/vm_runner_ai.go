package taskengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/samber/lo"
)

const InputPlaceholder = "{input}"

type AIProcessor struct {
	*CommonProcessor
}

func NewAIProcessor(p *CommonProcessor) *AIProcessor {
	return &AIProcessor{CommonProcessor: p}
}

// SelectAction returns the first allowed action contained in the reply,
// ignoring case, or the first allowed action when none matches
func SelectAction(reply string, actions []string) string {
	if len(actions) == 0 {
		return ""
	}

	lower := strings.ToLower(reply)
	for _, action := range actions {
		if strings.Contains(lower, strings.ToLower(action)) {
			return action
		}
	}
	return actions[0]
}

// renderInput formats a store value for prompt substitution: strings as is,
// everything else as compact JSON
func renderInput(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(body)
}

func cleanActions(actions []string) []string {
	// editors sometimes store the allow-list as one comma separated string
	if len(actions) == 1 && strings.Contains(actions[0], ",") {
		actions = strings.Split(actions[0], ",")
	}

	out := lo.Map(actions, func(a string, _ int) string { return strings.TrimSpace(a) })
	return lo.Uniq(lo.Compact(out))
}

func (p *AIProcessor) buildPrompt(ec *ExecutionContext, nodeID string, data *model.AIData, actions []string) string {
	prompt := data.Prompt

	if strings.Contains(prompt, InputPlaceholder) {
		if key, value, ok := ec.ResolveInput(nodeID); ok {
			prompt = strings.ReplaceAll(prompt, InputPlaceholder, renderInput(value))
			p.logger.Debug("resolved ai prompt input", "node_id", nodeID, "key", key)
		} else {
			p.logger.Warn("prompt references {input} but no input is connected", "node_id", nodeID)
		}
	}

	if len(actions) > 0 {
		prompt = fmt.Sprintf(
			"%s\n\nRespond with exactly one of the following options and nothing else: %s",
			prompt,
			strings.Join(actions, ", "),
		)
	}

	return prompt
}

func (p *AIProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.AIData) (*StepResult, error) {
	if p.ports.AI == nil {
		return nil, NewPortNotConfiguredError("ai")
	}

	actions := cleanActions(data.OutputActions)
	prompt := p.buildPrompt(ec, nodeID, data, actions)

	reply, err := p.ports.AI.Complete(ctx, prompt)
	if err != nil {
		return nil, WrapStructuredError(ExternalCallFailed, err, "ai completion failed")
	}

	key := StoreKey("ai", nodeID)

	if len(actions) == 0 {
		result := &StepResult{
			Effect: reply,
			Output: map[string]any{"prompt": prompt, "response": reply},
		}
		return result.Write(key, reply), nil
	}

	action := SelectAction(reply, actions)
	if !strings.Contains(strings.ToLower(reply), strings.ToLower(action)) {
		p.logger.Info("ai reply matched no action, using the first one", "node_id", nodeID, "action", action)
	}

	result := &StepResult{
		Effect: action,
		Output: map[string]any{
			"prompt":   prompt,
			"response": reply,
			"action":   action,
		},
	}
	return result.
		Write(key, action).
		Write(key+"_actions", []string{action}), nil
}
