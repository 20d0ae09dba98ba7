package taskengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

const MaxPreprocessIterations = 100

// preprocessText evaluates every {{ }} expression in text with goja. Store
// entries are visible as globals when their key is a valid identifier, and
// always through the `store` object, e.g. {{ store["api_node-1"].price }}.
// Expressions that fail to evaluate are removed. Substituted values are never
// scanned again, so stored data cannot inject expressions. Cancelling ctx
// interrupts a running expression.
func (c *CommonProcessor) preprocessText(ctx context.Context, ec *ExecutionContext, text string) string {
	// Quick return if no template syntax found
	if !strings.Contains(text, "{{") || !strings.Contains(text, "}}") {
		return text
	}

	jsvm := goja.New()
	snapshot := ec.Store.Snapshot()
	for key, value := range snapshot {
		if isIdentifier(key) {
			_ = jsvm.Set(key, value)
		}
	}
	_ = jsvm.Set("store", snapshot)

	stop := context.AfterFunc(ctx, func() {
		jsvm.Interrupt(ctx.Err())
	})
	defer stop()

	result := text
	cursor := 0

	for i := 0; i < MaxPreprocessIterations; i++ {
		start := strings.Index(result[cursor:], "{{")
		if start == -1 {
			break
		}
		start += cursor

		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start

		// nested and empty expressions evaluate to blank
		replacement := ""
		expr := strings.TrimSpace(result[start+2 : end])
		if expr != "" && !strings.Contains(expr, "{{") {
			replacement = c.evalExpression(jsvm, expr)
		}

		result = result[:start] + replacement + result[end+2:]
		cursor = start + len(replacement)
	}

	return result
}

func (c *CommonProcessor) evalExpression(jsvm *goja.Runtime, expr string) string {
	// wrap in an IIFE to prevent variable leakage between expressions
	script := fmt.Sprintf(`(() => { return %s; })()`, expr)

	evaluated, err := jsvm.RunString(script)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("template expression failed", "expr", expr, "error", err)
		}
		return ""
	}
	return renderTemplateValue(evaluated.Export())
}

func renderTemplateValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		body, err := json.Marshal(t)
		if err == nil {
			return string(body)
		}
	}
	return fmt.Sprintf("%v", v)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
