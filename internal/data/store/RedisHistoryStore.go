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

func chatKey(chatId string) string {
	return "dm:" + chatId
}

// RedisHistoryStore keeps DM conversation turns per chat as a Redis list with
// a TTL. The caller owns the window it hands to the completion chain; this
// store only persists and pages.
type RedisHistoryStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisHistoryStore(ctx context.Context) *RedisHistoryStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisHistoryDB)
	if backing == nil {
		return nil
	}
	return &RedisHistoryStore{
		store:  backing,
		logger: logger_i.NewLogger("HistoryStore"),
	}
}

func (s *RedisHistoryStore) AppendTurn(ctx context.Context, chatId string, turn messageModel.ConversationTurn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshalling turn: %w", err)
	}
	if err := s.store.ListPush(ctx, chatKey(chatId), data, config.RedisHistoryTTL); err != nil {
		log.Error("error saving turn", "error:", err)
		return err
	}
	return nil
}

// History returns the most recent limit turns in chronological order: always
// a suffix of the true conversation.
func (s *RedisHistoryStore) History(ctx context.Context, chatId string, limit int) ([]messageModel.ConversationTurn, error) {
	if limit <= 0 {
		limit = config.DMHistoryWindow
	}
	raw, err := s.store.ListLastN(ctx, chatKey(chatId), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("loading history for %s: %w", chatId, err)
	}

	turns := make([]messageModel.ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn messageModel.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("unmarshalling turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func TestHistoryStore(store *redisStore.Store) *RedisHistoryStore {
	return &RedisHistoryStore{
		store:  store,
		logger: logger_i.NewLogger("test history store"),
	}
}
