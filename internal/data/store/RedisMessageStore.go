package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/data/redisStore"
	"github.com/svemula/chatvector/internal/domain/messageModel"
	"github.com/svemula/chatvector/pkg/logger_i"
)

const pendingIndexKey = "pending_vectorization"

func messageKey(id string) string {
	return "msg:" + id
}

// RedisMessageStore holds the message records and the pending-vectorization
// index: a sorted set of message ids scored by creation time, so a sweep page
// always comes back oldest first.
type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisMessageDB)
	if backing == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  backing,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) SaveMessage(ctx context.Context, msg messageModel.Message) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "message Id", msg.Id)

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling message %s: %w", msg.Id, err)
	}
	if err := s.store.Set(ctx, messageKey(msg.Id), data, 0); err != nil {
		log.Error("error saving message", "error:", err)
		return err
	}
	if !msg.Vectorized {
		if err := s.store.SortedAdd(ctx, pendingIndexKey, msg.Id, float64(msg.Timestamp.Unix())); err != nil {
			log.Error("error indexing pending message", "error:", err)
			return err
		}
	}
	return nil
}

// PendingMessages returns up to limit unvectorized messages, oldest first.
// An empty page is a normal answer, not an error.
func (s *RedisMessageStore) PendingMessages(ctx context.Context, limit int) ([]messageModel.Message, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	ids, err := s.store.SortedFirstN(ctx, pendingIndexKey, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("reading pending index: %w", err)
	}

	messages := make([]messageModel.Message, 0, len(ids))
	for _, id := range ids {
		val, err := s.store.Get(ctx, messageKey(id))
		if s.store.IsNil(err) {
			// record gone but index entry left behind; drop the orphan
			log.Warn("pending index points at missing message", "message Id", id)
			_ = s.store.SortedRem(ctx, pendingIndexKey, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading message %s: %w", id, err)
		}
		var msg messageModel.Message
		if err := json.Unmarshal([]byte(val), &msg); err != nil {
			return nil, fmt.Errorf("unmarshalling message %s: %w", id, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// MarkVectorized flips the flag per id and drops the id from the pending
// index. Targeted per-id updates keep concurrent sweeps from corrupting each
// other's pages.
func (s *RedisMessageStore) MarkVectorized(ctx context.Context, ids []string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	for _, id := range ids {
		val, err := s.store.Get(ctx, messageKey(id))
		if s.store.IsNil(err) {
			log.Warn("cannot mark missing message", "message Id", id)
			continue
		}
		if err != nil {
			return fmt.Errorf("loading message %s: %w", id, err)
		}
		var msg messageModel.Message
		if err := json.Unmarshal([]byte(val), &msg); err != nil {
			return fmt.Errorf("unmarshalling message %s: %w", id, err)
		}

		msg.Vectorized = true
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshalling message %s: %w", id, err)
		}
		if err := s.store.Set(ctx, messageKey(id), data, 0); err != nil {
			return fmt.Errorf("updating message %s: %w", id, err)
		}
		if err := s.store.SortedRem(ctx, pendingIndexKey, id); err != nil {
			return fmt.Errorf("removing %s from pending index: %w", id, err)
		}
	}
	log.Debug("Marked messages vectorized", "count", len(ids))
	return nil
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test message store"),
	}
}
