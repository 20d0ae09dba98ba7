package taskengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/avax-workflow/core/testutil"
	"github.com/AvaProtocol/avax-workflow/model"
)

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders("Content-Type: application/json\n\nAuthorization: Bearer a:b\n: orphan\nnocolon")

	assert.Equal(t, map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer a:b",
	}, headers)
}

func TestRestRequestWithTemplates(t *testing.T) {
	p := newTestPorts()
	p.http.body = `{"price": 27.5, "symbol": "AVAX"}`

	wf := testutil.Workflow([]*model.Node{
		testutil.Node("token", model.NodeTypeSetData, map[string]any{"storageKey": "token", "inputValue": "abc"}),
		testutil.Node("api", model.NodeTypeAPICall, map[string]any{
			"url":     "https://api.example.com/price?key={{ token }}",
			"method":  "post",
			"headers": "Authorization: Bearer {{ token }}\nX-Static: 1",
			"body":    `{"token": "{{ token }}"}`,
		}),
		testutil.Node("get", model.NodeTypeGetData, map[string]any{"storageKey": "api_api", "outputKey": "price"}),
	})

	run := runWorkflow(t, p, wf)

	step := stepOf(t, run, "api")
	require.Equal(t, model.StepStatusSucceeded, step.Status, step.Message)
	assert.Equal(t, "POST https://api.example.com/price?key=abc -> HTTP 200", step.Effect)

	require.Len(t, p.http.requests, 1)
	req := p.http.requests[0]
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "https://api.example.com/price?key=abc", req.URL)
	assert.Equal(t, "Bearer abc", req.Headers["Authorization"])
	assert.Equal(t, "1", req.Headers["X-Static"])
	assert.Equal(t, `{"token": "abc"}`, req.Body)

	assert.Equal(t, 27.5, stepOf(t, run, "get").Output)
}

func TestRestDefaultsToGet(t *testing.T) {
	p := newTestPorts()
	p.http.body = "pong"

	wf := testutil.Workflow([]*model.Node{
		testutil.Node("api", model.NodeTypeAPICall, map[string]any{"url": "https://api.example.com/ping"}),
	})

	run := runWorkflow(t, p, wf)

	step := stepOf(t, run, "api")
	assert.Equal(t, "GET https://api.example.com/ping -> HTTP 200", step.Effect)
	assert.Equal(t, "pong", step.Output.(map[string]any)["body"])
}

func TestRestErrorStatusStillSucceeds(t *testing.T) {
	p := newTestPorts()
	p.http.status = 503

	wf := testutil.Workflow([]*model.Node{
		testutil.Node("api", model.NodeTypeAPICall, map[string]any{"url": "https://api.example.com"}),
	})

	run := runWorkflow(t, p, wf)

	step := stepOf(t, run, "api")
	assert.Equal(t, model.StepStatusSucceeded, step.Status)
	assert.Contains(t, step.Effect, "HTTP 503")
}

func TestRestTransportErrorFails(t *testing.T) {
	p := newTestPorts()
	p.http.err = errBoom

	wf := testutil.Workflow([]*model.Node{
		testutil.Node("api", model.NodeTypeAPICall, map[string]any{"url": "https://api.example.com"}),
	})

	run := runWorkflow(t, p, wf)

	step := stepOf(t, run, "api")
	assert.Equal(t, model.StepStatusFailed, step.Status)
	assert.Equal(t, string(ExternalCallFailed), step.ErrorKind)
}

func TestRestCurlMode(t *testing.T) {
	p := newTestPorts()
	p.http.body = `{"ok":true}`

	wf := testutil.Workflow([]*model.Node{
		testutil.Node("api", model.NodeTypeAPICall, map[string]any{
			"mode":        "curl",
			"curlCommand": `curl -X PUT https://api.example.com/items/1 -H 'Content-Type: application/json' -d '{"name":"a"}'`,
		}),
	})

	run := runWorkflow(t, p, wf)

	require.Equal(t, model.StepStatusSucceeded, stepOf(t, run, "api").Status)
	require.Len(t, p.http.requests, 1)
	req := p.http.requests[0]
	assert.Equal(t, "PUT", req.Method)
	assert.Equal(t, "https://api.example.com/items/1", req.URL)
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
	assert.Equal(t, `{"name":"a"}`, req.Body)
}

func TestParseResponseBody(t *testing.T) {
	assert.Equal(t, map[string]any{"a": float64(1)}, parseResponseBody([]byte(`{"a":1}`)))
	assert.Equal(t, "plain", parseResponseBody([]byte("plain")))
	assert.Equal(t, "", parseResponseBody(nil))
}
