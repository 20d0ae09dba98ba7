package taskengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AvaProtocol/avax-workflow/core/testutil"
)

func TestPreprocessText(t *testing.T) {
	ec := newExecutionContext("run", testutil.Workflow(nil), nil)
	ec.Store.Set("token", "abc")
	ec.Store.Set("api_node-1", map[string]any{"price": 27.5, "tags": []any{"a", "b"}})

	c := &CommonProcessor{}
	ctx := context.Background()

	assert.Equal(t, "no templates", c.preprocessText(ctx, ec, "no templates"))
	assert.Equal(t, "key=abc", c.preprocessText(ctx, ec, "key={{ token }}"))
	assert.Equal(t, "p=27.5", c.preprocessText(ctx, ec, `p={{ store["api_node-1"].price }}`))
	assert.Equal(t, `t=["a","b"]`, c.preprocessText(ctx, ec, `t={{ store["api_node-1"].tags }}`))
	assert.Equal(t, "sum=3", c.preprocessText(ctx, ec, "sum={{ 1 + 2 }}"))
	assert.Equal(t, "x=", c.preprocessText(ctx, ec, "x={{ undefinedName.field }}"))
	assert.Equal(t, "a-abc-b", c.preprocessText(ctx, ec, "a-{{ token }}-b"))
}

func TestPreprocessTextDoesNotEvaluateSubstitutedValues(t *testing.T) {
	ec := newExecutionContext("run", testutil.Workflow(nil), nil)
	ec.Store.Set("name", "{{ 6*7 }}")
	ec.Store.Set("body", map[string]any{"note": "{{ token }}"})

	c := &CommonProcessor{}
	ctx := context.Background()

	assert.Equal(t, "hi {{ 6*7 }}", c.preprocessText(ctx, ec, "hi {{ name }}"))
	assert.Equal(t, "{{ 6*7 }} and 3", c.preprocessText(ctx, ec, "{{ name }} and {{ 1 + 2 }}"))
	assert.Equal(t, `{"note":"{{ token }}"}`, c.preprocessText(ctx, ec, "{{ body }}"))
}

func TestPreprocessTextStopsOnCancel(t *testing.T) {
	ec := newExecutionContext("run", testutil.Workflow(nil), nil)
	c := &CommonProcessor{}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan string, 1)
	go func() {
		done <- c.preprocessText(ctx, ec, "a{{ (() => { while (true) {} })() }}b")
	}()

	select {
	case out := <-done:
		assert.Equal(t, "ab", out)
	case <-time.After(5 * time.Second):
		t.Fatal("template evaluation ignored context cancellation")
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, isIdentifier("token"))
	assert.True(t, isIdentifier("_a1"))
	assert.False(t, isIdentifier("api_node-1"))
	assert.False(t, isIdentifier("1abc"))
	assert.False(t, isIdentifier(""))
}
