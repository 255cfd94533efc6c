package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/metrics"
	"github.com/svemula/chatvector/internal/rag/llm"
	"github.com/svemula/chatvector/internal/tokens"
	"github.com/svemula/chatvector/pkg/logger_i"
)

// CompletionError records which tiers failed. It never crosses Invoke's
// boundary; callers that want telemetry use Run instead.
type CompletionError struct {
	PrimaryErr  error
	FallbackErr error
}

func (e *CompletionError) Error() string {
	if e.FallbackErr != nil {
		return fmt.Sprintf("both completion tiers failed: primary: %v; fallback: %v", e.PrimaryErr, e.FallbackErr)
	}
	return fmt.Sprintf("primary completion tier failed: %v", e.PrimaryErr)
}

// Chain is the only component that talks to the completion providers. Every
// higher-level flow (DM assistant, retrieval answers) goes through it.
type Chain struct {
	primary  llm.StreamingProvider
	fallback llm.Provider
	budgeter *tokens.Budgeter
	budget   int
	logger   *logger_i.Logger
}

func NewChain(primary llm.StreamingProvider, fallback llm.Provider, budgeter *tokens.Budgeter, budget int) *Chain {
	if budget <= 0 {
		budget = config.ContextTokenBudget
	}
	return &Chain{
		primary:  primary,
		fallback: fallback,
		budgeter: budgeter,
		budget:   budget,
		logger:   logger_i.NewLogger("Completion Chain"),
	}
}

// Invoke produces an answer and never fails: when both tiers are down it
// returns the fixed apology string. UI callers use this.
func (c *Chain) Invoke(ctx context.Context, systemPrompt, userInput, contextText string, onToken llm.TokenCallback) string {
	answer, err := c.Run(ctx, systemPrompt, userInput, contextText, onToken)
	if err != nil {
		return config.ApologyAnswer
	}
	return answer
}

// Run is Invoke with the failure information kept: the returned error is a
// *CompletionError when both tiers failed. Context is truncated to the token
// budget on every call, long or not, so the code path stays uniform.
func (c *Chain) Run(ctx context.Context, systemPrompt, userInput, contextText string, onToken llm.TokenCallback) (string, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	trimmed := c.budgeter.Truncate(contextText, c.budget)
	userPrompt := buildPrompt(trimmed, userInput)

	start := time.Now()
	answer, primaryErr := c.callPrimary(ctx, systemPrompt, userPrompt, onToken)
	metrics.CaptureExecutionMetrics("llm_primary", time.Since(start))
	if primaryErr == nil {
		return answer, nil
	}
	log.Error("Primary completion tier failed, trying fallback", "error", primaryErr)
	metrics.IncrementFallbackInvocations()

	// conservative retry on the secondary tier, simplified prompt, no streaming
	fbStart := time.Now()
	answer, fallbackErr := c.fallback.Generate(ctx, systemPrompt,
		fmt.Sprintf("%s\n\n%s", config.FallbackPrompt, userPrompt))
	metrics.CaptureExecutionMetrics("llm_fallback", time.Since(fbStart))
	if fallbackErr == nil {
		return answer, nil
	}
	log.Error("Fallback completion tier failed", "error", fallbackErr)

	return "", &CompletionError{PrimaryErr: primaryErr, FallbackErr: fallbackErr}
}

func (c *Chain) callPrimary(ctx context.Context, systemPrompt, userPrompt string, onToken llm.TokenCallback) (string, error) {
	if onToken != nil {
		return c.primary.GenerateStream(ctx, systemPrompt, userPrompt, onToken)
	}
	return c.primary.Generate(ctx, systemPrompt, userPrompt)
}

func buildPrompt(contextText, userInput string) string {
	if contextText == "" {
		return fmt.Sprintf("User Question: %s", userInput)
	}
	return fmt.Sprintf("Context:\n%s\n\nUser Question: %s", contextText, userInput)
}
