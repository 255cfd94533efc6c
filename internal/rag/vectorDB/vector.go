package vectorDB

import (
	"context"

	"github.com/svemula/chatvector/internal/domain/messageModel"
)

// Index is the vector database seen by the rest of the pipeline. Namespaces
// keep one workspace's vectors isolated from another's; an empty result from
// Query is valid, not an error.
type Index interface {
	Upsert(ctx context.Context, namespace string, vectors []messageModel.EmbeddingVector) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]messageModel.SearchMatch, error)

	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}
