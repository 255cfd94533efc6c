package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/rag/llm"
	"github.com/svemula/chatvector/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

// NewGeminiClient is the primary completion tier. It is the only tier with
// token streaming.
func NewGeminiClient(ctx context.Context, modelName string, apikey string) (llm.StreamingProvider, error) {
	logger := logger_i.NewLogger("llm_gemini")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.CompletionCallTimeout)
	defer cancel()

	result, err := c.client.Models.GenerateContent(
		callCtx,
		c.modelName,
		genai.Text(userPrompt),
		generateConfig(systemPrompt),
	)
	if err != nil {
		c.logger.Error("Gemini generation failed", "error", err)
		return "", err
	}
	return result.Text(), nil
}

func (c *llmClient) GenerateStream(ctx context.Context, systemPrompt string, userPrompt string, onToken llm.TokenCallback) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.CompletionCallTimeout)
	defer cancel()

	var full strings.Builder
	for chunk, err := range c.client.Models.GenerateContentStream(
		callCtx,
		c.modelName,
		genai.Text(userPrompt),
		generateConfig(systemPrompt),
	) {
		if err != nil {
			c.logger.Error("Gemini stream failed", "error", err)
			return "", err
		}
		piece := chunk.Text()
		if piece == "" {
			continue
		}
		full.WriteString(piece)
		if onToken != nil {
			onToken(piece)
		}
	}
	return full.String(), nil
}

func generateConfig(systemPrompt string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}
}
