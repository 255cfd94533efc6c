package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/svemula/chatvector/internal/domain/messageModel"
	"github.com/svemula/chatvector/internal/rag/llm"
)

// MockRagService counts sweep invocations, everything else is inert.
type MockRagService struct {
	SweepCount int32
	SweepErr   error
}

func (m *MockRagService) ProcessPendingMessages(ctx context.Context) (int, error) {
	atomic.AddInt32(&m.SweepCount, 1)
	return 1, m.SweepErr
}

func (m *MockRagService) AddMessages(ctx context.Context, messages []messageModel.Message) messageModel.IngestionResult {
	return messageModel.IngestionResult{}
}

func (m *MockRagService) SearchMessages(ctx context.Context, query string, limit int) ([]messageModel.SearchMatch, error) {
	return nil, nil
}

func (m *MockRagService) Answer(ctx context.Context, query string, filters messageModel.SearchFilters) (messageModel.Answer, error) {
	return messageModel.Answer{}, nil
}

func (m *MockRagService) ProcessDMMessage(ctx context.Context, message string, history []messageModel.ConversationTurn, onToken llm.TokenCallback) string {
	return ""
}

func TestScheduler_SweepsOnInterval(t *testing.T) {
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	Start(mockRag, 10*time.Millisecond, stopChan, wg)

	// let a few ticks elapse
	time.Sleep(60 * time.Millisecond)
	close(stopChan)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduler did not stop within timeout")
	}

	count := atomic.LoadInt32(&mockRag.SweepCount)
	if count < 2 {
		t.Errorf("Expected at least 2 sweeps, got %d", count)
	}
}

func TestScheduler_StopsCleanlyOnSignal(t *testing.T) {
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	Start(mockRag, time.Hour, stopChan, wg)
	close(stopChan)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduler kept running after stop signal")
	}
	if atomic.LoadInt32(&mockRag.SweepCount) != 0 {
		t.Error("Sweep fired before the first interval elapsed")
	}
}
