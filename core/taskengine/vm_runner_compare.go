package taskengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/expr-lang/expr"
	"github.com/samber/lo"
)

const OperatorContains = "contains"

var comparisonOperators = []string{">", "<", "==", "!=", ">=", "<=", OperatorContains}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func asText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(body)
}

// EvaluateCondition checks `input <operator> value`. Both sides are compared
// as numbers when both are numeric, otherwise as text. `contains` tests
// substring membership, or element membership for array inputs.
func EvaluateCondition(input any, operator, value string) (bool, error) {
	op := strings.TrimSpace(operator)
	if !lo.Contains(comparisonOperators, op) {
		return false, fmt.Errorf("unsupported operator %q", operator)
	}

	var code string
	env := map[string]any{}

	switch {
	case op == OperatorContains:
		if items, ok := input.([]any); ok {
			env["input"] = lo.Map(items, func(item any, _ int) string { return asText(item) })
			env["value"] = value
			code = "value in input"
		} else {
			env["input"] = asText(input)
			env["value"] = value
			code = "input contains value"
		}
	default:
		left, leftOK := asNumber(input)
		right, rightOK := asNumber(value)
		if leftOK && rightOK {
			env["input"] = left
			env["value"] = right
		} else {
			env["input"] = asText(input)
			env["value"] = value
		}
		code = "input " + op + " value"
	}

	program, err := expr.Compile(code, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, err
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}

	return result.(bool), nil
}

// conditionInput reads from inputKey when set, otherwise from the first
// incoming edge
func conditionInput(ec *ExecutionContext, nodeID, inputKey string) (any, error) {
	if key := strings.TrimSpace(inputKey); key != "" {
		v, ok := ec.Store.Get(key)
		if !ok {
			return nil, NewStructuredError(
				DataNotFound,
				fmt.Sprintf("no data stored at %s", key),
				map[string]interface{}{"inputKey": key},
			)
		}
		return deepCopy(v), nil
	}

	_, v, ok := ec.ResolveInput(nodeID)
	if !ok {
		return nil, NewStructuredError(DataNotFound, "no input available for condition")
	}
	return deepCopy(v), nil
}

type CompareProcessor struct {
	*CommonProcessor
}

func NewCompareProcessor(p *CommonProcessor) *CompareProcessor {
	return &CompareProcessor{CommonProcessor: p}
}

func (p *CompareProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.CompareData) (*StepResult, error) {
	input, err := conditionInput(ec, nodeID, data.InputKey)
	if err != nil {
		return nil, err
	}

	met, err := EvaluateCondition(input, data.Operator, data.Value)
	if err != nil {
		return nil, WrapStructuredError(InvalidParameters, err, "cannot compare")
	}

	effect := "condition not met"
	if met {
		effect = "condition met"
	}

	result := &StepResult{
		Effect: effect,
		Output: map[string]any{
			"input":    input,
			"operator": data.Operator,
			"value":    data.Value,
			"result":   met,
		},
	}
	return result.Write(StoreKey("compare", nodeID), met), nil
}

type FilterProcessor struct {
	*CommonProcessor
}

func NewFilterProcessor(p *CommonProcessor) *FilterProcessor {
	return &FilterProcessor{CommonProcessor: p}
}

func (p *FilterProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.FilterData) (*StepResult, error) {
	input, err := conditionInput(ec, nodeID, data.InputKey)
	if err != nil {
		return nil, err
	}

	items, ok := input.([]any)
	if !ok {
		return nil, NewStructuredError(
			InvalidParameters,
			fmt.Sprintf("filter input must be an array, got %T", input),
		)
	}

	kept := make([]any, 0, len(items))
	for i, item := range items {
		met, err := EvaluateCondition(item, data.Operator, data.Value)
		if err != nil {
			return nil, WrapStructuredError(InvalidParameters, err, "cannot evaluate item %d", i)
		}
		if met {
			kept = append(kept, item)
		}
	}

	result := &StepResult{
		Effect: fmt.Sprintf("kept %d of %d items", len(kept), len(items)),
		Output: kept,
	}
	return result.Write(StoreKey("filter", nodeID), kept), nil
}
