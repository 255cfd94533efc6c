package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/domain/messageModel"
	"github.com/svemula/chatvector/internal/metrics"
	"github.com/svemula/chatvector/pkg/logger_i"
)

// BatchProcessor is what the sweeper needs from the ingestion engine.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, messages []messageModel.Message) messageModel.IngestionResult
}

// Sweeper drains not-yet-vectorized messages from the backing store in
// bounded pages. It is the only component that flips the vectorization flag,
// and it flips it only for ids the engine reports as durably upserted, so a
// failed message stays eligible for the next sweep (at-least-once).
type Sweeper struct {
	store    messageModel.MessageStore
	engine   BatchProcessor
	pageSize int
	logger   *logger_i.Logger
}

func NewSweeper(store messageModel.MessageStore, engine BatchProcessor, pageSize int) *Sweeper {
	if pageSize <= 0 {
		pageSize = config.SweepPageSize
	}
	return &Sweeper{
		store:    store,
		engine:   engine,
		pageSize: pageSize,
		logger:   logger_i.NewLogger("Sweeper"),
	}
}

// Run performs one sweep and returns how many messages were vectorized.
// Safe to call repeatedly; a page with nothing pending is a no-op. Only the
// sweeper's own datastore calls surface as errors, ingestion failures are
// absorbed into "don't advance the flag".
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("sweep", time.Since(start)) }()

	pending, err := s.store.PendingMessages(ctx, s.pageSize)
	if err != nil {
		return 0, fmt.Errorf("querying pending messages: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	log.Info("Sweeping pending messages", "count", len(pending))
	metrics.ObserveSweepSize(len(pending))

	result := s.engine.ProcessBatch(ctx, pending)
	for _, err := range result.Errors {
		log.Error("Ingestion failure during sweep", "error", err)
	}

	if len(result.SucceededIds) > 0 {
		if err := s.store.MarkVectorized(ctx, result.SucceededIds); err != nil {
			// the vectors are durable but the flags stayed false; the next
			// sweep re-upserts them idempotently
			return 0, fmt.Errorf("marking %d messages vectorized: %w", len(result.SucceededIds), err)
		}
	}

	log.Info("Sweep finished", "successful", result.Successful, "failed", result.Failed)
	return result.Successful, nil
}
