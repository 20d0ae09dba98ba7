package taskengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/avax-workflow/core/testutil"
	"github.com/AvaProtocol/avax-workflow/model"
)

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		operator string
		value    string
		want     bool
	}{
		{"numeric greater", float64(30), ">", "25", true},
		{"numeric string", "10", "<", "9.5", false},
		{"numeric equal across forms", "1.0", "==", "1", true},
		{"text equal", "AVAX", "==", "AVAX", true},
		{"text not equal", "AVAX", "!=", "ETH", true},
		{"text ordering", "abc", "<", "abd", true},
		{"substring", "hello world", "contains", "world", true},
		{"array membership", []any{"a", float64(2)}, "contains", "2", true},
		{"array no member", []any{"a"}, "contains", "b", false},
		{"bool as text", true, "==", "true", true},
		{"greater or equal", 5, ">=", "5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCondition(tt.input, tt.operator, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := EvaluateCondition(1, "=~", "1")
	assert.Error(t, err)
}

func TestCompareReadsEdgeInput(t *testing.T) {
	p := newTestPorts()
	p.http.body = "42"

	wf := testutil.Workflow([]*model.Node{
		testutil.Node("api", model.NodeTypeAPICall, map[string]any{"url": "https://api.example.com/n"}),
		testutil.Node("cmp", model.NodeTypeCompare, map[string]any{"operator": ">", "value": "40"}),
		testutil.Node("get", model.NodeTypeGetData, map[string]any{"storageKey": "compare_cmp"}),
	}, testutil.Edge("api", "cmp"))

	run := runWorkflow(t, p, wf)

	step := stepOf(t, run, "cmp")
	require.Equal(t, model.StepStatusSucceeded, step.Status, step.Message)
	assert.Equal(t, "condition met", step.Effect)
	assert.Equal(t, true, stepOf(t, run, "get").Output)
}

func TestCompareInputKeyMissing(t *testing.T) {
	p := newTestPorts()

	wf := testutil.Workflow([]*model.Node{
		testutil.Node("cmp", model.NodeTypeCompare, map[string]any{"operator": "==", "value": "1", "inputKey": "nothing"}),
		testutil.Node("orphan", model.NodeTypeCompare, map[string]any{"operator": "==", "value": "1"}),
	})

	run := runWorkflow(t, p, wf)

	assert.Equal(t, string(DataNotFound), stepOf(t, run, "cmp").ErrorKind)
	assert.Equal(t, string(DataNotFound), stepOf(t, run, "orphan").ErrorKind)
}

func TestFilterKeepsMatchingItems(t *testing.T) {
	p := newTestPorts()

	wf := testutil.Workflow([]*model.Node{
		testutil.Node("set", model.NodeTypeSetData, map[string]any{"storageKey": "prices", "inputJson": `[10, 25, 30, 5]`}),
		testutil.Node("filter", model.NodeTypeFilter, map[string]any{"operator": ">=", "value": "25", "inputKey": "prices"}),
		testutil.Node("get", model.NodeTypeGetData, map[string]any{"storageKey": "filter_filter"}),
	})

	run := runWorkflow(t, p, wf)

	step := stepOf(t, run, "filter")
	require.Equal(t, model.StepStatusSucceeded, step.Status, step.Message)
	assert.Equal(t, "kept 2 of 4 items", step.Effect)
	assert.Equal(t, []any{float64(25), float64(30)}, stepOf(t, run, "get").Output)
}

func TestFilterNeedsArray(t *testing.T) {
	p := newTestPorts()

	wf := testutil.Workflow([]*model.Node{
		testutil.Node("set", model.NodeTypeSetData, map[string]any{"storageKey": "one", "inputValue": "x"}),
		testutil.Node("filter", model.NodeTypeFilter, map[string]any{"operator": "==", "value": "x", "inputKey": "one"}),
	})

	run := runWorkflow(t, p, wf)

	step := stepOf(t, run, "filter")
	assert.Equal(t, model.StepStatusFailed, step.Status)
	assert.Equal(t, string(InvalidParameters), step.ErrorKind)
}
