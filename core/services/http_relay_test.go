package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/avax-workflow/core/taskengine"
)

type capturedRequest struct {
	method      string
	path        string
	contentType string
	auth        string
	body        string
}

func captureServer(t *testing.T, status int, reply string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var seen []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, capturedRequest{
			method:      r.Method,
			path:        r.URL.RequestURI(),
			contentType: r.Header.Get("Content-Type"),
			auth:        r.Header.Get("Authorization"),
			body:        string(body),
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	return srv, &seen
}

func TestHTTPRelayPost(t *testing.T) {
	srv, seen := captureServer(t, http.StatusCreated, `{"ok":true}`)

	relay := NewHTTPRelay(0, nil)
	resp, err := relay.Call(context.Background(), taskengine.HTTPRequest{
		URL:     srv.URL + "/items?x=1",
		Method:  "post",
		Headers: map[string]string{"Authorization": "Bearer t"},
		Body:    `{"name":"a"}`,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, "POST", got.method)
	assert.Equal(t, "/items?x=1", got.path)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, "Bearer t", got.auth)
	assert.Equal(t, `{"name":"a"}`, got.body)
}

func TestHTTPRelayGetDropsBody(t *testing.T) {
	srv, seen := captureServer(t, http.StatusOK, "pong")

	resp, err := NewHTTPRelay(0, nil).Call(context.Background(), taskengine.HTTPRequest{
		URL:     srv.URL,
		Body:    "ignored",
		Headers: map[string]string{"content-type": "text/plain"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pong", string(resp.Body))
	got := (*seen)[0]
	assert.Equal(t, "GET", got.method)
	assert.Equal(t, "", got.body)
	assert.Equal(t, "text/plain", got.contentType)
}

func TestHTTPRelayErrorStatusIsNotAnError(t *testing.T) {
	srv, _ := captureServer(t, http.StatusBadGateway, "down")

	resp, err := NewHTTPRelay(0, nil).Call(context.Background(), taskengine.HTTPRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.Status)
}

func TestHTTPRelayRejectsRelativeURL(t *testing.T) {
	relay := NewHTTPRelay(0, nil)

	for _, u := range []string{"/api/x", "example.com/x", "ftp://example.com", ""} {
		_, err := relay.Call(context.Background(), taskengine.HTTPRequest{URL: u})
		assert.Error(t, err, u)
	}
}
