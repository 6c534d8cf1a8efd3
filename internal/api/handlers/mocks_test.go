package handlers

import (
	"context"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) Ingest(ctx context.Context, fileName, text string) (*domain.IngestResult, error) {
	args := m.Called(ctx, fileName, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestResult), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) List(ctx context.Context, limit int, cursor string) (*pagination.PageResult[*domain.Document], error) {
	args := m.Called(ctx, limit, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[*domain.Document]), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) SourceURL(ctx context.Context, fileName string) (string, error) {
	args := m.Called(ctx, fileName)
	return args.String(0), args.Error(1)
}

type MockAnswerService struct {
	mock.Mock
}

func (m *MockAnswerService) Ask(ctx context.Context, input service.AskInput) (*domain.AnswerResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnswerResult), args.Error(1)
}

type MockAskLogRepository struct {
	mock.Mock
}

func (m *MockAskLogRepository) CreateAskLog(ctx context.Context, entry service.AskLogEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}
