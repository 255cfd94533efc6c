package embedding

import "context"

// Embedder turns text into a fixed-length vector. One call per text; retry
// and batching are the ingestion engine's job, not the client's.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
