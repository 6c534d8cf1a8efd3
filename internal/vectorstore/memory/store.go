// Package memory is an in-process vector store with the same contract as the
// Postgres repository. It ranks chunks by brute-force cosine similarity.
package memory

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
)

type Store struct {
	mu         sync.RWMutex
	dimensions int
	nextID     int64
	records    []domain.StoredChunk
}

// NewStore creates an empty store. When dimensions is positive every upserted
// embedding must have exactly that length.
func NewStore(dimensions int) *Store {
	return &Store{dimensions: dimensions}
}

// Upsert stores one chunk of a document. Writing chunk 0 first removes every
// record stored for the document.
func (s *Store) Upsert(ctx context.Context, documentID string, chunkIndex int, embedding []float32, metadata domain.ChunkMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.dimensions > 0 && len(embedding) != s.dimensions {
		return domain.ErrInvalidDimensions
	}

	cpy := make([]float32, len(embedding))
	copy(cpy, embedding)
	metadata.DocumentID = documentID
	metadata.ChunkIndex = chunkIndex
	if err := domain.ValidateChunkMetadata(metadata); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if chunkIndex == 0 {
		kept := s.records[:0]
		for _, rec := range s.records {
			if rec.Metadata.DocumentID != documentID {
				kept = append(kept, rec)
			}
		}
		s.records = kept
	}

	for i, rec := range s.records {
		if rec.Metadata.DocumentID == documentID && rec.Metadata.ChunkIndex == chunkIndex {
			s.records[i].Metadata = metadata
			s.records[i].Embedding = cpy
			s.records[i].CreatedAt = time.Now().UTC()
			return nil
		}
	}

	s.nextID++
	s.records = append(s.records, domain.StoredChunk{
		ID:        strconv.FormatInt(s.nextID, 10),
		Metadata:  metadata,
		Embedding: cpy,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Search returns the filter.TopK records most similar to embedding. Equal
// scores keep insertion order.
func (s *Store) Search(ctx context.Context, embedding []float32, filter domain.SearchFilter) ([]domain.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filter.TopK <= 0 {
		return []domain.SearchHit{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]domain.SearchHit, 0, len(s.records))
	for _, rec := range s.records {
		if filter.FileName != "" && rec.Metadata.FileName != filter.FileName {
			continue
		}
		if filter.DocumentID != "" && rec.Metadata.DocumentID != filter.DocumentID {
			continue
		}
		hits = append(hits, domain.SearchHit{
			ID:       rec.ID,
			Score:    cosineSimilarity(embedding, rec.Embedding),
			Metadata: rec.Metadata,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > filter.TopK {
		hits = hits[:filter.TopK]
	}
	return hits, nil
}

func (s *Store) CountByDocument(ctx context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.records {
		if rec.Metadata.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	for _, doc := range s.documents() {
		if doc.ID == documentID {
			return doc, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

// ListDocuments lists stored documents, newest first, starting after cursor.
func (s *Store) ListDocuments(ctx context.Context, limit int, cursor *pagination.Cursor) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 20
	}

	docs := s.documents()
	sort.Slice(docs, func(i, j int) bool {
		return newer(docs[i], docs[j].CreatedAt, docs[j].ID)
	})

	out := make([]*domain.Document, 0, limit)
	for _, doc := range docs {
		if cursor != nil && !newer(&domain.Document{ID: cursor.LastID, CreatedAt: cursor.Timestamp}, doc.CreatedAt, doc.ID) {
			continue
		}
		out = append(out, doc)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) documents() []*domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[string]*domain.Document)
	order := make([]*domain.Document, 0)
	for _, rec := range s.records {
		doc, ok := byID[rec.Metadata.DocumentID]
		if !ok {
			doc = &domain.Document{
				ID:        rec.Metadata.DocumentID,
				FileName:  rec.Metadata.FileName,
				CreatedAt: rec.CreatedAt,
			}
			byID[doc.ID] = doc
			order = append(order, doc)
		}
		doc.ChunkCount++
		if rec.CreatedAt.Before(doc.CreatedAt) {
			doc.CreatedAt = rec.CreatedAt
		}
	}
	return order
}

// newer reports whether doc sorts ahead of (createdAt, id) in newest-first order.
func newer(doc *domain.Document, createdAt time.Time, id string) bool {
	if !doc.CreatedAt.Equal(createdAt) {
		return doc.CreatedAt.After(createdAt)
	}
	return doc.ID > id
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
