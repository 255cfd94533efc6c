package messageModel

import (
	"context"
	"time"
)

// Message is the ingestion unit: one chat message as stored by the backing store.
type Message struct {
	Id          string    `json:"id"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	UserId      string    `json:"user_id"`
	ChannelId   string    `json:"channel_id"`
	WorkspaceId string    `json:"workspace_id,omitempty"`
	Vectorized  bool      `json:"is_vectorized"`
}

// EmbeddingVector is what goes into the vector index. Id equals Message.Id so
// re-ingesting the same message overwrites instead of duplicating.
type EmbeddingVector struct {
	Id       string
	Values   []float32
	Metadata map[string]any
}

// IngestionResult accumulates per-item accounting across the sub-batches of
// one ProcessBatch call. Successful+Failed always equals the input length.
type IngestionResult struct {
	Successful int
	Failed     int
	Errors     []error

	//ids that made it into the index durably; the sweeper flips the
	//vectorization flag for exactly these
	SucceededIds []string
}

func (r *IngestionResult) Merge(other IngestionResult) {
	r.Successful += other.Successful
	r.Failed += other.Failed
	r.Errors = append(r.Errors, other.Errors...)
	r.SucceededIds = append(r.SucceededIds, other.SucceededIds...)
}

// SearchMatch is one vector-index neighbor with its payload echoed back.
type SearchMatch struct {
	Id        string    `json:"id"`
	Score     float32   `json:"score"`
	Content   string    `json:"content"`
	UserId    string    `json:"user_id"`
	ChannelId string    `json:"channel_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Answer is the result of a query-time retrieval run.
type Answer struct {
	Text    string        `json:"answer"`
	Sources []SearchMatch `json:"sources"`
	Cached  bool          `json:"cached,omitempty"`
}

// SearchFilters are applied in memory on returned metadata, not pushed into
// the vector query.
type SearchFilters struct {
	ChannelId string
	After     time.Time
	Before    time.Time
}

func (f SearchFilters) Matches(m SearchMatch) bool {
	if f.ChannelId != "" && m.ChannelId != f.ChannelId {
		return false
	}
	if !f.After.IsZero() && m.Timestamp.Before(f.After) {
		return false
	}
	if !f.Before.IsZero() && m.Timestamp.After(f.Before) {
		return false
	}
	return true
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one DM exchange half; a slice of turns is the bounded
// history window the caller owns and hands to the completion chain.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageStore is the backing datastore surface the pipeline needs: page
// unvectorized messages and flip their flag per id. The sweeper is the only
// writer of the flag.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg Message) error
	PendingMessages(ctx context.Context, limit int) ([]Message, error)
	MarkVectorized(ctx context.Context, ids []string) error
}

// HistoryStore keeps DM conversation turns per chat.
type HistoryStore interface {
	AppendTurn(ctx context.Context, chatId string, turn ConversationTurn) error
	History(ctx context.Context, chatId string, limit int) ([]ConversationTurn, error)
}
