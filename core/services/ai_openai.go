package services

import (
	"context"
	"fmt"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/sashabaranov/go-openai"

	"github.com/AvaProtocol/avax-workflow/pkg/logger"
)

type OpenAICompleter struct {
	client *openai.Client
	model  string
	logger sdklogging.Logger
}

func NewOpenAICompleter(cfg AIConfig, log sdklogging.Logger) *OpenAICompleter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger.EnsureLogger(log),
	}
}

func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	o.logger.Debug("openai completion", "model", o.model, "total_tokens", resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return NoResponseText, nil
	}
	return resp.Choices[0].Message.Content, nil
}
