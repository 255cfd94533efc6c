package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/svemula/chatvector/internal/domain/messageModel"
	"github.com/svemula/chatvector/internal/rag/llm"
	"github.com/svemula/chatvector/pkg/logger_i"
)

type stubService struct {
	OnProcessDMMessage func(ctx context.Context, message string, history []messageModel.ConversationTurn, onToken llm.TokenCallback) string
}

func (s *stubService) ProcessPendingMessages(ctx context.Context) (int, error) {
	return 0, nil
}

func (s *stubService) AddMessages(ctx context.Context, messages []messageModel.Message) messageModel.IngestionResult {
	return messageModel.IngestionResult{}
}

func (s *stubService) SearchMessages(ctx context.Context, query string, limit int) ([]messageModel.SearchMatch, error) {
	return nil, nil
}

func (s *stubService) Answer(ctx context.Context, query string, filters messageModel.SearchFilters) (messageModel.Answer, error) {
	return messageModel.Answer{}, nil
}

func (s *stubService) ProcessDMMessage(ctx context.Context, message string, history []messageModel.ConversationTurn, onToken llm.TokenCallback) string {
	return s.OnProcessDMMessage(ctx, message, history, onToken)
}

type stubHistory struct{}

func (s *stubHistory) AppendTurn(ctx context.Context, chatId string, turn messageModel.ConversationTurn) error {
	return nil
}

func (s *stubHistory) History(ctx context.Context, chatId string, limit int) ([]messageModel.ConversationTurn, error) {
	return nil, nil
}

func useStubHandler(t *testing.T, svc *stubService) {
	t.Helper()
	prevInstance, prevLog := handlerInstance, logRH
	handlerInstance = &PipelineHandler{service: svc, history: &stubHistory{}}
	logRH = logger_i.NewLogger("test handlers")
	t.Cleanup(func() {
		handlerInstance, logRH = prevInstance, prevLog
	})
}

func TestStreamDM_MultilineTokenFraming(t *testing.T) {
	svc := &stubService{
		OnProcessDMMessage: func(ctx context.Context, message string, history []messageModel.ConversationTurn, onToken llm.TokenCallback) string {
			onToken("first line\nsecond line")
			onToken("tail")
			return "first line\nsecond line tail"
		},
	}
	useStubHandler(t, svc)

	req := httptest.NewRequest("POST", "/dm", strings.NewReader(`{"message":"hi","stream":true}`))
	rec := httptest.NewRecorder()
	DMHandler(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "data: first line\ndata: second line\n\n") {
		t.Errorf("Multi-line token broke SSE framing:\n%s", body)
	}
	if !strings.Contains(body, "data: tail\n\n") {
		t.Errorf("Single-line token missing:\n%s", body)
	}
	if !strings.Contains(body, "event: done") {
		t.Errorf("Stream terminator missing:\n%s", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestValidateContext(t *testing.T) {
	useStubHandler(t, &stubService{})

	if !validateContext(context.Background()) {
		t.Error("Live context with an initialized handler rejected")
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if validateContext(cancelled) {
		t.Error("Cancelled context accepted")
	}
}
