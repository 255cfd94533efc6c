package openaiLLM

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/customHttpClient"
	"github.com/svemula/chatvector/internal/rag/llm"
	"github.com/svemula/chatvector/pkg/logger_i"
)

type fallbackClient struct {
	client    openai.Client
	modelName string
	logger    *logger_i.Logger
}

// NewFallbackClient is the conservative secondary tier: lower temperature,
// no streaming. It only runs when the primary tier has already failed.
func NewFallbackClient(modelName string, apikey string) llm.Provider {
	logger := logger_i.NewLogger("llm_fallback")

	client := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithHTTPClient(customHttpClient.Pooled()),
	)

	logger.Info("Fallback completion client created", "model", modelName)
	return &fallbackClient{client: client, modelName: modelName, logger: logger}
}

func (c *fallbackClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.CompletionCallTimeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Temperature: openai.Float(config.FallbackTemperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		c.logger.Error("Fallback generation failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty fallback completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
