package taskengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AvaProtocol/avax-workflow/model"
)

type RestProcessor struct {
	*CommonProcessor
}

func NewRestProcessor(p *CommonProcessor) *RestProcessor {
	return &RestProcessor{CommonProcessor: p}
}

// NewAPICallProcessor is the runner for apiCall nodes
func NewAPICallProcessor(p *CommonProcessor) *RestProcessor {
	return NewRestProcessor(p)
}

// ParseHeaders reads newline separated `Key: Value` pairs. Each line is split
// on its first colon; lines without a key are ignored.
func ParseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(line[idx+1:])
	}
	return headers
}

func (r *RestProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.APICallData) (*StepResult, error) {
	if r.ports.HTTP == nil {
		return nil, NewPortNotConfiguredError("http")
	}

	method := strings.ToUpper(strings.TrimSpace(data.Method))
	if method == "" {
		method = "GET"
	}

	r.logger.Debug("REST API URL before template processing", "url", data.URL)
	url := r.preprocessText(ctx, ec, strings.TrimSpace(data.URL))
	r.logger.Debug("REST API URL after template processing", "url", url)

	headers := make(map[string]string)
	for key, value := range ParseHeaders(data.Headers) {
		headers[r.preprocessText(ctx, ec, key)] = r.preprocessText(ctx, ec, value)
	}

	req := HTTPRequest{
		URL:     url,
		Method:  method,
		Headers: headers,
		Body:    r.preprocessText(ctx, ec, data.Body),
	}

	resp, err := r.ports.HTTP.Call(ctx, req)
	if err != nil {
		return nil, WrapStructuredError(ExternalCallFailed, err, "%s %s failed", method, url)
	}

	body := parseResponseBody(resp.Body)

	result := &StepResult{
		Effect: fmt.Sprintf("%s %s -> HTTP %d", method, url, resp.Status),
		Output: map[string]any{
			"status": resp.Status,
			"body":   body,
		},
	}
	return result.Write(StoreKey("api", nodeID), body), nil
}

// parseResponseBody decodes JSON bodies and keeps anything else as text
func parseResponseBody(raw []byte) any {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return ""
	}

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed
	}
	return string(raw)
}
