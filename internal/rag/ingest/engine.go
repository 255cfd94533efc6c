package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/domain/messageModel"
	"github.com/svemula/chatvector/internal/metrics"
	"github.com/svemula/chatvector/internal/rag/embedding"
	"github.com/svemula/chatvector/internal/rag/vectorDB"
	"github.com/svemula/chatvector/pkg/logger_i"
)

type EngineConfig struct {
	BatchSize       int
	MaxRetries      int
	RetryDelay      time.Duration
	InterBatchDelay time.Duration
	Namespace       string
	Limiter         *rate.Limiter
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BatchSize:       config.IngestBatchSize,
		MaxRetries:      config.MaxEmbedRetries,
		RetryDelay:      config.EmbedRetryDelay,
		InterBatchDelay: config.InterBatchDelay,
		Namespace:       config.MessageIndexName,
		Limiter:         rate.NewLimiter(rate.Limit(config.EmbedCallsPerSecond), config.EmbedCallBurst),
	}
}

// Engine drains message batches into the vector index. Sub-batches run
// strictly in order with a pause between them; inside a sub-batch the
// embedding calls are in flight concurrently.
type Engine struct {
	embedder embedding.Embedder
	index    vectorDB.Index
	cfg      EngineConfig
	logger   *logger_i.Logger
}

func NewEngine(embedder embedding.Embedder, index vectorDB.Index, cfg EngineConfig) *Engine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.IngestBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = config.MaxEmbedRetries
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.MessageIndexName
	}
	return &Engine{
		embedder: embedder,
		index:    index,
		cfg:      cfg,
		logger:   logger_i.NewLogger("Batch Ingestion"),
	}
}

// ProcessBatch vectorizes messages and reports per-item accounting. No error
// escapes: every failure lands in the result's error list, and
// Successful+Failed always equals len(messages).
func (e *Engine) ProcessBatch(ctx context.Context, messages []messageModel.Message) messageModel.IngestionResult {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	var result messageModel.IngestionResult
	for i := 0; i < len(messages); i += e.cfg.BatchSize {
		end := i + e.cfg.BatchSize
		if end > len(messages) {
			end = len(messages)
		}
		subBatch := messages[i:end]

		log.Debug("Processing sub-batch", "offset", i, "size", len(subBatch))
		result.Merge(e.processSubBatch(ctx, subBatch))

		//pause before the next sub-batch to stay under provider rate limits;
		//nothing to wait for after the last one
		if end < len(messages) {
			select {
			case <-ctx.Done():
				remaining := messages[end:]
				result.Failed += len(remaining)
				result.Errors = append(result.Errors, fmt.Errorf("ingestion cancelled with %d messages left: %w", len(remaining), ctx.Err()))
				return result
			case <-time.After(e.cfg.InterBatchDelay):
			}
		}
	}

	metrics.AddVectorizedMessages(result.Successful)
	if result.Failed > 0 {
		metrics.AddIngestionFailures(result.Failed)
	}
	log.Debug("Batch done", "successful", result.Successful, "failed", result.Failed)
	return result
}

func (e *Engine) processSubBatch(ctx context.Context, subBatch []messageModel.Message) messageModel.IngestionResult {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ingest_sub_batch", time.Since(start)) }()

	type embedOutcome struct {
		msg    messageModel.Message
		values []float32
		err    error
	}

	outcomes := make([]embedOutcome, len(subBatch))
	var wg sync.WaitGroup
	for i, msg := range subBatch {
		wg.Add(1)
		go func(i int, msg messageModel.Message) {
			defer wg.Done()
			values, err := retryWithBackoff(ctx, e.cfg.MaxRetries, e.cfg.RetryDelay, e.cfg.Limiter,
				func(ctx context.Context) ([]float32, error) {
					return e.embedder.Embed(ctx, msg.Content)
				})
			outcomes[i] = embedOutcome{msg: msg, values: values, err: err}
		}(i, msg)
	}
	wg.Wait()

	var result messageModel.IngestionResult
	vectors := make([]messageModel.EmbeddingVector, 0, len(subBatch))
	ok := make([]messageModel.Message, 0, len(subBatch))
	for _, out := range outcomes {
		if out.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("embedding message %s: %w", out.msg.Id, out.err))
			continue
		}
		vectors = append(vectors, toVector(out.msg, out.values))
		ok = append(ok, out.msg)
	}

	if len(vectors) == 0 {
		return result
	}

	// one upsert per sub-batch; if it fails, nothing was durable, so every
	// embedded item counts as failed
	if err := e.index.Upsert(ctx, e.cfg.Namespace, vectors); err != nil {
		result.Failed += len(vectors)
		result.Errors = append(result.Errors, fmt.Errorf("upserting sub-batch of %d: %w", len(vectors), err))
		return result
	}

	result.Successful += len(ok)
	for _, msg := range ok {
		result.SucceededIds = append(result.SucceededIds, msg.Id)
	}
	return result
}

// toVector flattens the message into index metadata so query results carry
// everything the answer flow needs without a second datastore trip.
func toVector(msg messageModel.Message, values []float32) messageModel.EmbeddingVector {
	return messageModel.EmbeddingVector{
		Id:     msg.Id,
		Values: values,
		Metadata: map[string]any{
			"message_id":   msg.Id,
			"content":      msg.Content,
			"timestamp":    msg.Timestamp.Unix(),
			"user_id":      msg.UserId,
			"channel_id":   msg.ChannelId,
			"workspace_id": msg.WorkspaceId,
		},
	}
}
