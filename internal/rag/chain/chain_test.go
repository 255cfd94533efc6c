package chain_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/rag/chain"
	"github.com/svemula/chatvector/internal/rag/llm"
	"github.com/svemula/chatvector/internal/tokens"
)

type mockPrimary struct {
	OnGenerate       func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	OnGenerateStream func(ctx context.Context, systemPrompt, userPrompt string, onToken llm.TokenCallback) (string, error)
}

func (m *mockPrimary) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.OnGenerate(ctx, systemPrompt, userPrompt)
}

func (m *mockPrimary) GenerateStream(ctx context.Context, systemPrompt, userPrompt string, onToken llm.TokenCallback) (string, error) {
	return m.OnGenerateStream(ctx, systemPrompt, userPrompt, onToken)
}

type mockFallback struct {
	OnGenerate func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (m *mockFallback) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.OnGenerate(ctx, systemPrompt, userPrompt)
}

func newTestChain(primary llm.StreamingProvider, fallback llm.Provider) *chain.Chain {
	return chain.NewChain(primary, fallback, tokens.NewBudgeter(config.TokenizerEncoding), config.ContextTokenBudget)
}

func TestRun_PrimaryAnswers(t *testing.T) {
	fallbackCalled := false
	primary := &mockPrimary{
		OnGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "primary answer", nil
		},
	}
	fallback := &mockFallback{
		OnGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			fallbackCalled = true
			return "", nil
		},
	}

	c := newTestChain(primary, fallback)
	answer, err := c.Run(context.Background(), "you are helpful", "hello", "", nil)

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if answer != "primary answer" {
		t.Errorf("Got %q; want primary answer", answer)
	}
	if fallbackCalled {
		t.Error("Fallback invoked although primary succeeded")
	}
}

func TestRun_FallsBackWhenPrimaryFails(t *testing.T) {
	primary := &mockPrimary{
		OnGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "", errors.New("gemini unavailable")
		},
	}
	fallback := &mockFallback{
		OnGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			if systemPrompt != "you are helpful" {
				t.Errorf("Fallback ran with system prompt %q; want the caller's", systemPrompt)
			}
			if !strings.Contains(userPrompt, config.FallbackPrompt) {
				t.Errorf("Fallback prompt missing the conservative preamble: %q", userPrompt)
			}
			return "fallback answer", nil
		},
	}

	c := newTestChain(primary, fallback)
	answer, err := c.Run(context.Background(), "you are helpful", "hello", "", nil)

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if answer != "fallback answer" {
		t.Errorf("Got %q; want fallback answer", answer)
	}
}

func TestRun_BothTiersFail(t *testing.T) {
	primary := &mockPrimary{
		OnGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "", errors.New("primary down")
		},
	}
	fallback := &mockFallback{
		OnGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "", errors.New("fallback down")
		},
	}

	c := newTestChain(primary, fallback)
	_, err := c.Run(context.Background(), "sys", "hello", "", nil)

	var completionErr *chain.CompletionError
	if !errors.As(err, &completionErr) {
		t.Fatalf("Expected *CompletionError, got %T: %v", err, err)
	}
	if completionErr.PrimaryErr == nil || completionErr.FallbackErr == nil {
		t.Errorf("Both tier errors must be recorded: %+v", completionErr)
	}
}

func TestInvoke_ApologizesWhenEverythingFails(t *testing.T) {
	primary := &mockPrimary{
		OnGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "", errors.New("primary down")
		},
	}
	fallback := &mockFallback{
		OnGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "", errors.New("fallback down")
		},
	}

	c := newTestChain(primary, fallback)
	if got := c.Invoke(context.Background(), "sys", "hello", "", nil); got != config.ApologyAnswer {
		t.Errorf("Invoke = %q; want the apology answer", got)
	}
}

func TestRun_StreamingGoesThroughPrimaryOnly(t *testing.T) {
	primary := &mockPrimary{
		OnGenerateStream: func(ctx context.Context, systemPrompt, userPrompt string, onToken llm.TokenCallback) (string, error) {
			for _, piece := range []string{"hel", "lo ", "there"} {
				onToken(piece)
			}
			return "hello there", nil
		},
	}

	var streamed strings.Builder
	c := newTestChain(primary, &mockFallback{})
	answer, err := c.Run(context.Background(), "sys", "hi", "", func(token string) {
		streamed.WriteString(token)
	})

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if answer != "hello there" {
		t.Errorf("Accumulated answer = %q", answer)
	}
	if streamed.String() != "hello there" {
		t.Errorf("Streamed tokens = %q; want the full answer", streamed.String())
	}
}

func TestRun_ContextTruncatedToBudget(t *testing.T) {
	budgeter := tokens.NewBudgeter(config.TokenizerEncoding)
	var seenPrompt string
	primary := &mockPrimary{
		OnGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			seenPrompt = userPrompt
			return "ok", nil
		},
	}

	c := chain.NewChain(primary, &mockFallback{}, budgeter, 50)
	longContext := strings.Repeat("channel history line about deployments ", 500)

	if _, err := c.Run(context.Background(), "sys", "what happened?", longContext, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(seenPrompt, longContext) {
		t.Fatal("Over-budget context reached the provider untrimmed")
	}
	if !strings.Contains(seenPrompt, config.TruncationEllipsis) {
		t.Error("Trimmed context missing the ellipsis marker")
	}
	if !strings.Contains(seenPrompt, "User Question: what happened?") {
		t.Errorf("Prompt lost the user question: %q", seenPrompt)
	}
}

func TestRun_EmptyContextKeepsBarePrompt(t *testing.T) {
	primary := &mockPrimary{
		OnGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			if strings.Contains(userPrompt, "Context:") {
				t.Errorf("Empty context still produced a context block: %q", userPrompt)
			}
			return "ok", nil
		},
	}

	c := newTestChain(primary, &mockFallback{})
	if _, err := c.Run(context.Background(), "sys", "hello", "", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}
