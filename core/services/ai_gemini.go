package services

import (
	"context"
	"fmt"
	"strings"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/AvaProtocol/avax-workflow/pkg/logger"
)

type GeminiCompleter struct {
	apiKey string
	model  string
	opts   []option.ClientOption
	logger sdklogging.Logger
}

func NewGeminiCompleter(cfg AIConfig, log sdklogging.Logger) *GeminiCompleter {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	return &GeminiCompleter{
		apiKey: cfg.APIKey,
		model:  model,
		opts:   opts,
		logger: logger.EnsureLogger(log),
	}
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, g.opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			g.logger.Debug("closing gemini client", "error", closeErr)
		}
	}()

	resp, err := client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}

	return geminiText(resp), nil
}

// geminiText joins the text parts of the first candidate that has any
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return NoResponseText
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}

	return NoResponseText
}
