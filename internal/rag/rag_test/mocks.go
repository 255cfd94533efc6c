package rag_test

import (
	"context"

	"github.com/svemula/chatvector/internal/domain/messageModel"
	"github.com/svemula/chatvector/internal/rag/llm"
)

type MockIndex struct {
	OnUpsert          func(ctx context.Context, namespace string, vectors []messageModel.EmbeddingVector) error
	OnQuery           func(ctx context.Context, namespace string, vector []float32, topK int) ([]messageModel.SearchMatch, error)
	OnGetCachedAnswer func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache     func(ctx context.Context, id string, vector []float32, answer string) error
}

func (m *MockIndex) Upsert(ctx context.Context, namespace string, vectors []messageModel.EmbeddingVector) error {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, namespace, vectors)
	}
	return nil
}

func (m *MockIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]messageModel.SearchMatch, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, namespace, vector, topK)
	}
	return nil, nil
}

func (m *MockIndex) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, queryVector)
	}
	return "", false, nil
}

func (m *MockIndex) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, vector, answer)
	}
	return nil
}

type MockEmbedder struct {
	OnEmbed func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.OnEmbed(ctx, text)
}

type MockMessageStore struct {
	OnSaveMessage     func(ctx context.Context, msg messageModel.Message) error
	OnPendingMessages func(ctx context.Context, limit int) ([]messageModel.Message, error)
	OnMarkVectorized  func(ctx context.Context, ids []string) error
}

func (m *MockMessageStore) SaveMessage(ctx context.Context, msg messageModel.Message) error {
	if m.OnSaveMessage != nil {
		return m.OnSaveMessage(ctx, msg)
	}
	return nil
}

func (m *MockMessageStore) PendingMessages(ctx context.Context, limit int) ([]messageModel.Message, error) {
	if m.OnPendingMessages != nil {
		return m.OnPendingMessages(ctx, limit)
	}
	return nil, nil
}

func (m *MockMessageStore) MarkVectorized(ctx context.Context, ids []string) error {
	if m.OnMarkVectorized != nil {
		return m.OnMarkVectorized(ctx, ids)
	}
	return nil
}

type MockEngine struct {
	OnProcessBatch func(ctx context.Context, messages []messageModel.Message) messageModel.IngestionResult
}

func (m *MockEngine) ProcessBatch(ctx context.Context, messages []messageModel.Message) messageModel.IngestionResult {
	return m.OnProcessBatch(ctx, messages)
}

type MockSweeper struct {
	OnRun func(ctx context.Context) (int, error)
}

func (m *MockSweeper) Run(ctx context.Context) (int, error) {
	return m.OnRun(ctx)
}

type MockPrimaryLLM struct {
	OnGenerate       func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	OnGenerateStream func(ctx context.Context, systemPrompt, userPrompt string, onToken llm.TokenCallback) (string, error)
}

func (m *MockPrimaryLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.OnGenerate(ctx, systemPrompt, userPrompt)
}

func (m *MockPrimaryLLM) GenerateStream(ctx context.Context, systemPrompt, userPrompt string, onToken llm.TokenCallback) (string, error) {
	return m.OnGenerateStream(ctx, systemPrompt, userPrompt, onToken)
}

type MockFallbackLLM struct {
	OnGenerate func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (m *MockFallbackLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.OnGenerate(ctx, systemPrompt, userPrompt)
}
