package service

import (
	"context"
	"strings"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// DocumentService exposes the stored documents and their archived sources.
type DocumentService struct {
	catalog DocumentCatalog
	archive DocumentArchive
}

// NewDocumentService creates a DocumentService. archive may be nil, in which
// case SourceURL reports that storage is not configured.
func NewDocumentService(catalog DocumentCatalog, archive DocumentArchive) *DocumentService {
	return &DocumentService{catalog: catalog, archive: archive}
}

// List returns one page of documents, newest first.
func (s *DocumentService) List(ctx context.Context, limit int, cursor string) (*pagination.PageResult[*domain.Document], error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewInvalidArgument("invalid cursor")
	}

	docs, err := s.catalog.ListDocuments(ctx, limit+1, decoded)
	if err != nil {
		return nil, err
	}

	return pagination.NewPage(docs, limit, documentKey), nil
}

func documentKey(d *domain.Document) (string, time.Time) {
	return d.ID, d.CreatedAt
}

func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, domain.ErrEmptyFileName
	}
	return s.catalog.GetDocument(ctx, documentID)
}

// SourceURL returns a time-limited download URL for the raw text of an
// ingested document.
func (s *DocumentService) SourceURL(ctx context.Context, fileName string) (string, error) {
	if s.archive == nil {
		return "", domain.ErrStorageNotConfigured
	}
	if _, err := s.Get(ctx, fileName); err != nil {
		return "", err
	}
	return s.archive.DocumentURL(ctx, fileName)
}
