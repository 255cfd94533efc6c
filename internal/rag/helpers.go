package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/svemula/chatvector/internal/domain/messageModel"
	"github.com/svemula/chatvector/internal/metrics"
)

func (s *service) executeEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Error("EMBEDDING_FAILURE", "error", err)
	}
	return emb, err
}

func (s *service) executeCacheCheckStep(ctx context.Context, emb []float32) (string, bool) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.index.GetCachedAnswer(ctx, emb)
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, emb []float32, topK int) ([]messageModel.SearchMatch, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	matches, err := s.index.Query(ctx, "", emb, topK)
	if err != nil {
		s.logger.Error("VECTOR_DB_FAILURE", "error", err)
	}
	return matches, err
}

// formatContextBlocks renders retrieved neighbors as one block per source so
// the model can tell messages apart.
func formatContextBlocks(matches []messageModel.SearchMatch) string {
	if len(matches) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, fmt.Sprintf("[channel %s | %s | user %s]\n%s",
			m.ChannelId, m.Timestamp.Format(time.RFC3339), m.UserId, m.Content))
	}
	return strings.Join(blocks, "\n\n")
}

func formatHistory(history []messageModel.ConversationTurn) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}
	return strings.Join(lines, "\n")
}
