package services

import (
	"errors"
	"fmt"
	"strings"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"

	"github.com/AvaProtocol/avax-workflow/core/taskengine"
)

const (
	AIProviderGemini = "gemini"
	AIProviderOpenAI = "openai"

	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o-mini"

	// returned when the provider answered without any text
	NoResponseText = "No response generated"
)

var ErrMissingAPIKey = errors.New("ai api key is not configured")

type AIConfig struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint, mostly for tests and proxies
	BaseURL string
}

// NewAICompleter picks the completer for cfg.Provider, gemini by default
func NewAICompleter(cfg AIConfig, log sdklogging.Logger) (taskengine.AICompleter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", AIProviderGemini:
		return NewGeminiCompleter(cfg, log), nil
	case AIProviderOpenAI:
		return NewOpenAICompleter(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
