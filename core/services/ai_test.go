package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAICompleter(t *testing.T) {
	_, err := NewAICompleter(AIConfig{Provider: "gemini"}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	c, err := NewAICompleter(AIConfig{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &GeminiCompleter{}, c)
	assert.Equal(t, DefaultGeminiModel, c.(*GeminiCompleter).model)

	c, err = NewAICompleter(AIConfig{Provider: "OpenAI", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAICompleter{}, c)

	_, err = NewAICompleter(AIConfig{Provider: "llama", APIKey: "k"}, nil)
	assert.Error(t, err)
}

func TestGeminiText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("posi"), genai.Text("tive")}}},
		},
	}
	assert.Equal(t, "positive", geminiText(resp))
	assert.Equal(t, NoResponseText, geminiText(&genai.GenerateContentResponse{}))
	assert.Equal(t, NoResponseText, geminiText(nil))
}

func TestOpenAICompleter(t *testing.T) {
	var gotPrompt, gotModel, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		if len(body.Messages) > 0 {
			gotPrompt = body.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"negative"},"finish_reason":"stop"}],"usage":{"total_tokens":5}}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter(AIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, nil)

	reply, err := c.Complete(context.Background(), "classify this")
	require.NoError(t, err)

	assert.Equal(t, "negative", reply)
	assert.Equal(t, "classify this", gotPrompt)
	assert.Equal(t, DefaultOpenAIModel, gotModel)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}
