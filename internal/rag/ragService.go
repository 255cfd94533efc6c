package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/svemula/chatvector/internal/adapter/utils"
	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/domain/messageModel"
	"github.com/svemula/chatvector/internal/metrics"
	"github.com/svemula/chatvector/internal/rag/chain"
	"github.com/svemula/chatvector/internal/rag/embedding"
	"github.com/svemula/chatvector/internal/rag/llm"
	"github.com/svemula/chatvector/internal/rag/vectorDB"
	"github.com/svemula/chatvector/pkg/logger_i"
)

// Service is the surface the HTTP layer and the scheduler see. Everything
// behind it (embedder, index, chain, sweeper) stays private to this package
// tree so the callers can't reach the providers directly.
type Service interface {
	ProcessPendingMessages(ctx context.Context) (int, error)
	AddMessages(ctx context.Context, messages []messageModel.Message) messageModel.IngestionResult
	SearchMessages(ctx context.Context, query string, limit int) ([]messageModel.SearchMatch, error)
	Answer(ctx context.Context, query string, filters messageModel.SearchFilters) (messageModel.Answer, error)
	ProcessDMMessage(ctx context.Context, message string, history []messageModel.ConversationTurn, onToken llm.TokenCallback) string
}

// BatchProcessor matches what the ingestion engine exposes.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, messages []messageModel.Message) messageModel.IngestionResult
}

// SweepRunner matches what the pending-message sweeper exposes.
type SweepRunner interface {
	Run(ctx context.Context) (int, error)
}

type service struct {
	index    vectorDB.Index
	embedder embedding.Embedder
	engine   BatchProcessor
	sweeper  SweepRunner
	chain    *chain.Chain
	store    messageModel.MessageStore
	logger   *logger_i.Logger
}

// NewService wires the pipeline together. All dependencies are constructed
// once at startup and injected; there is no hidden global client state.
func NewService(index vectorDB.Index, embedder embedding.Embedder, engine BatchProcessor, sw SweepRunner, ch *chain.Chain, store messageModel.MessageStore) Service {
	return &service{
		index:    index,
		embedder: embedder,
		engine:   engine,
		sweeper:  sw,
		chain:    ch,
		store:    store,
		logger:   logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) ProcessPendingMessages(ctx context.Context) (int, error) {
	return s.sweeper.Run(ctx)
}

// AddMessages persists the batch first, then vectorizes it. A message that
// fails to save is excluded from ingestion; a message that saves but fails to
// vectorize stays in the pending index for the next sweep.
func (s *service) AddMessages(ctx context.Context, messages []messageModel.Message) messageModel.IngestionResult {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if len(messages) == 0 {
		return messageModel.IngestionResult{}
	}

	var result messageModel.IngestionResult
	saved := make([]messageModel.Message, 0, len(messages))
	for _, msg := range messages {
		if err := s.store.SaveMessage(ctx, msg); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("saving message %s: %w", msg.Id, err))
			continue
		}
		saved = append(saved, msg)
	}

	result.Merge(s.engine.ProcessBatch(ctx, saved))

	if len(result.SucceededIds) > 0 {
		if err := s.store.MarkVectorized(ctx, result.SucceededIds); err != nil {
			// vectors are durable; the next sweep re-upserts idempotently and
			// flips the flags then
			log.Error("Failed to mark ingested messages vectorized", "error", err)
		}
	}
	return result
}

func (s *service) SearchMessages(ctx context.Context, query string, limit int) ([]messageModel.SearchMatch, error) {
	if limit <= 0 {
		limit = config.SearchTopK
	}

	emb, err := s.executeEmbeddingStep(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.executeVectorSearchStep(ctx, emb, limit)
}

func (s *service) Answer(ctx context.Context, query string, filters messageModel.SearchFilters) (messageModel.Answer, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	emb, err := s.executeEmbeddingStep(ctx, query)
	if err != nil {
		return messageModel.Answer{}, err
	}

	// Cache Check
	if cached, found := s.executeCacheCheckStep(ctx, emb); found {
		log.Debug("Answer served from semantic cache")
		return messageModel.Answer{Text: cached, Sources: []messageModel.SearchMatch{}, Cached: true}, nil
	}

	// Vector DB Search
	matches, err := s.executeVectorSearchStep(ctx, emb, config.SearchTopK)
	if err != nil {
		return messageModel.Answer{}, err
	}

	// filters run in memory over returned metadata; the index only supports
	// simple equality predicates so we don't push them down
	sources := make([]messageModel.SearchMatch, 0, len(matches))
	for _, m := range matches {
		if filters.Matches(m) {
			sources = append(sources, m)
		}
	}

	// LLM Generation; an empty context (empty index) is valid, not an error
	answer, err := s.chain.Run(ctx, config.ModelContext, query, formatContextBlocks(sources), nil)
	if err != nil {
		// both completion tiers are down; apologize to the caller but keep
		// the sentinel out of the semantic cache so it can't be replayed
		// after the providers recover
		log.Error("Completion failed on both tiers", "error", err)
		return messageModel.Answer{Text: config.ApologyAnswer, Sources: sources}, nil
	}

	//background cache save, real answers only
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.VectorCallTimeout)
		defer cancel()
		if err := s.index.SaveToCache(cacheCtx, utils.GetNewUUID(), emb, answer); err != nil {
			s.logger.Error("Failed to save answer to cache")
		}
	}()

	return messageModel.Answer{Text: answer, Sources: sources}, nil
}

func (s *service) ProcessDMMessage(ctx context.Context, message string, history []messageModel.ConversationTurn, onToken llm.TokenCallback) string {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("dm_message", time.Since(start)) }()

	return s.chain.Invoke(ctx, config.ModelContext, message, formatHistory(history), onToken)
}
