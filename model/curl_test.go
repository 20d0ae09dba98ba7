package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurl(t *testing.T) {
	req, err := ParseCurl(`curl -X put 'https://api.example.com/items/1' \
  -H "Content-Type: application/json" \
  -H 'X-Token: abc' \
  -d '{"name": "avax"}'`)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/items/1", req.URL)
	assert.Equal(t, "PUT", req.Method)
	assert.Equal(t, []string{"Content-Type: application/json", "X-Token: abc"}, req.Headers)
	assert.Equal(t, `{"name": "avax"}`, req.Body)
}

func TestParseCurlDefaultMethod(t *testing.T) {
	req, err := ParseCurl("curl -s https://api.example.com/ping")
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)

	req, err = ParseCurl(`curl https://api.example.com/ping --data-raw "x=1"`)
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "x=1", req.Body)
}

func TestParseCurlErrors(t *testing.T) {
	_, err := ParseCurl("curl -s")
	assert.ErrorIs(t, err, ErrEmptyCurlCommand)

	_, err = ParseCurl(`curl "https://api.example.com`)
	assert.Error(t, err)
}

func TestParseCurlShellQuoting(t *testing.T) {
	req, err := ParseCurl("curl 'https://api.example.com/q?a=1&b=2' -H \"X-Note: it's fine\" -d a\\ b")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/q?a=1&b=2", req.URL)
	assert.Equal(t, []string{"X-Note: it's fine"}, req.Headers)
	assert.Equal(t, "a b", req.Body)

	req, err = ParseCurl("curl \\\r\n  https://api.example.com/ping \\\r\n  -X DELETE")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/ping", req.URL)
	assert.Equal(t, "DELETE", req.Method)
}
