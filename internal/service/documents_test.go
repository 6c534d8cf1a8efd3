package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func docs(n int) []*domain.Document {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*domain.Document, n)
	for i := range out {
		out[i] = &domain.Document{
			ID:         string(rune('a'+i)) + ".md",
			FileName:   string(rune('a'+i)) + ".md",
			ChunkCount: i + 1,
			CreatedAt:  base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return out
}

func TestDocumentService_ListHasMore(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewDocumentService(catalog, nil)

	all := docs(3)
	catalog.On("ListDocuments", mock.Anything, 3, (*pagination.Cursor)(nil)).Return(all, nil)

	page, err := svc.List(context.Background(), 2, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, pagination.EncodeCursor(all[1].ID, all[1].CreatedAt), page.Cursor)
}

func TestDocumentService_ListLastPage(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewDocumentService(catalog, nil)

	cursor := pagination.EncodeCursor("b.md", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	catalog.On("ListDocuments", mock.Anything, 21, mock.MatchedBy(func(c *pagination.Cursor) bool {
		return c != nil && c.LastID == "b.md"
	})).Return(docs(1), nil)

	page, err := svc.List(context.Background(), 0, cursor)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Cursor)
}

func TestDocumentService_ListClampsLimit(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewDocumentService(catalog, nil)

	catalog.On("ListDocuments", mock.Anything, 101, mock.Anything).Return([]*domain.Document{}, nil).Once()

	_, err := svc.List(context.Background(), 5000, "")
	require.NoError(t, err)
	catalog.AssertExpectations(t)
}

func TestDocumentService_ListInvalidCursor(t *testing.T) {
	svc := NewDocumentService(new(mockCatalog), nil)

	_, err := svc.List(context.Background(), 10, "not-base64!")
	assert.True(t, domain.IsValidation(err))
}

func TestDocumentService_SourceURLWithoutArchive(t *testing.T) {
	svc := NewDocumentService(new(mockCatalog), nil)

	_, err := svc.SourceURL(context.Background(), "a.md")
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)
}

func TestDocumentService_SourceURLUnknownDocument(t *testing.T) {
	catalog := new(mockCatalog)
	archive := new(mockArchive)
	svc := NewDocumentService(catalog, archive)

	catalog.On("GetDocument", mock.Anything, "missing.md").Return(nil, domain.ErrDocumentNotFound)

	_, err := svc.SourceURL(context.Background(), "missing.md")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	archive.AssertNotCalled(t, "DocumentURL", mock.Anything, mock.Anything)
}

func TestDocumentService_SourceURL(t *testing.T) {
	catalog := new(mockCatalog)
	archive := new(mockArchive)
	svc := NewDocumentService(catalog, archive)

	catalog.On("GetDocument", mock.Anything, "a.md").Return(docs(1)[0], nil)
	archive.On("DocumentURL", mock.Anything, "a.md").Return("https://example.test/a", nil)

	url, err := svc.SourceURL(context.Background(), "a.md")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/a", url)
}

func TestDocumentService_GetPropagatesErrors(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewDocumentService(catalog, nil)

	catalog.On("GetDocument", mock.Anything, "a.md").Return(nil, errors.New("db down"))

	_, err := svc.Get(context.Background(), "a.md")
	assert.EqualError(t, err, "db down")

	_, err = svc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrEmptyFileName)
}
