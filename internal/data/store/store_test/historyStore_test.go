package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/svemula/chatvector/internal/data/store"
	"github.com/svemula/chatvector/internal/domain/messageModel"
)

func TestHistoryRoundtrip(t *testing.T) {
	_, backing := newTestBacking(t)
	s := store.TestHistoryStore(backing)
	ctx := context.Background()

	turns := []messageModel.ConversationTurn{
		{Role: messageModel.RoleUser, Content: "when is the release?", Timestamp: time.Now().UTC()},
		{Role: messageModel.RoleAssistant, Content: "friday afternoon", Timestamp: time.Now().UTC()},
	}
	for _, turn := range turns {
		if err := s.AppendTurn(ctx, "chat-1", turn); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	got, err := s.History(ctx, "chat-1", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Got %d turns; want 2", len(got))
	}
	if got[0].Role != messageModel.RoleUser || got[1].Content != "friday afternoon" {
		t.Errorf("Turns came back out of order or mangled: %+v", got)
	}
}

func TestHistory_ReturnsLastNChronologically(t *testing.T) {
	_, backing := newTestBacking(t)
	s := store.TestHistoryStore(backing)
	ctx := context.Background()

	for i := 1; i <= 8; i++ {
		turn := messageModel.ConversationTurn{
			Role:    messageModel.RoleUser,
			Content: fmt.Sprintf("turn %d", i),
		}
		if err := s.AppendTurn(ctx, "chat-1", turn); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	got, err := s.History(ctx, "chat-1", 3)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Got %d turns; want the last 3", len(got))
	}
	for i, want := range []string{"turn 6", "turn 7", "turn 8"} {
		if got[i].Content != want {
			t.Errorf("got[%d] = %q; want %q", i, got[i].Content, want)
		}
	}
}

func TestHistory_IsolatedPerChat(t *testing.T) {
	_, backing := newTestBacking(t)
	s := store.TestHistoryStore(backing)
	ctx := context.Background()

	if err := s.AppendTurn(ctx, "chat-a", messageModel.ConversationTurn{Role: messageModel.RoleUser, Content: "hello a"}); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}

	got, err := s.History(ctx, "chat-b", 10)
	if err != nil {
		t.Fatalf("History on empty chat failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("chat-b leaked turns from chat-a: %+v", got)
	}
}

func TestHistory_ExpiresWithTTL(t *testing.T) {
	mr, backing := newTestBacking(t)
	s := store.TestHistoryStore(backing)
	ctx := context.Background()

	if err := s.AppendTurn(ctx, "chat-1", messageModel.ConversationTurn{Role: messageModel.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}
	if mr.TTL("dm:chat-1") <= 0 {
		t.Error("History key saved without an expiry")
	}
}
