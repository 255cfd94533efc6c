package llm

import "context"

// TokenCallback observes tokens as they arrive. It is a side channel: the
// full accumulated string is still returned at the end.
type TokenCallback func(token string)

// Provider is one completion-model tier.
type Provider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// StreamingProvider is a tier that can additionally stream tokens. Only the
// primary tier supports this.
type StreamingProvider interface {
	Provider
	GenerateStream(ctx context.Context, systemPrompt string, userPrompt string, onToken TokenCallback) (string, error)
}
