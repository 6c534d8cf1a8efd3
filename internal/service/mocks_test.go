package service

import (
	"context"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
	"github.com/stretchr/testify/mock"
)

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *mockEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Upsert(ctx context.Context, documentID string, chunkIndex int, embedding []float32, metadata domain.ChunkMetadata) error {
	args := m.Called(ctx, documentID, chunkIndex, embedding, metadata)
	return args.Error(0)
}

func (m *mockStore) Search(ctx context.Context, embedding []float32, filter domain.SearchFilter) ([]domain.SearchHit, error) {
	args := m.Called(ctx, embedding, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchHit), args.Error(1)
}

type mockChat struct {
	mock.Mock
}

func (m *mockChat) Complete(ctx context.Context, messages []domain.ChatMessage, params domain.CompletionParams) (string, error) {
	args := m.Called(ctx, messages, params)
	return args.String(0), args.Error(1)
}

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) PutDocument(ctx context.Context, fileName, text string) error {
	args := m.Called(ctx, fileName, text)
	return args.Error(0)
}

func (m *mockArchive) DocumentURL(ctx context.Context, fileName string) (string, error) {
	args := m.Called(ctx, fileName)
	return args.String(0), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *mockCatalog) ListDocuments(ctx context.Context, limit int, cursor *pagination.Cursor) ([]*domain.Document, error) {
	args := m.Called(ctx, limit, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func vectors(n int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i), 1}
	}
	return out
}
