package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the width of the document_chunks.embedding column.
const EmbeddingDimensions = 1536

// DocumentChunkRepository persists chunk embeddings in Postgres and ranks them
// with pgvector cosine distance.
type DocumentChunkRepository struct {
	db dbtx
}

func NewDocumentChunkRepository(pool *pgxpool.Pool) *DocumentChunkRepository {
	return &DocumentChunkRepository{db: pool}
}

// Upsert stores one chunk of a document. Writing chunk 0 first removes every
// record stored for the document, so re-ingesting a document replaces it.
// The delete and the inserts that follow are not one transaction.
func (r *DocumentChunkRepository) Upsert(ctx context.Context, documentID string, chunkIndex int, embedding []float32, metadata domain.ChunkMetadata) error {
	metadata.DocumentID = documentID
	metadata.ChunkIndex = chunkIndex
	if err := domain.ValidateChunkMetadata(metadata); err != nil {
		return err
	}

	if chunkIndex == 0 {
		if _, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID); err != nil {
			return fmt.Errorf("failed to delete previous chunks: %w", err)
		}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO document_chunks (document_id, file_name, chunk_index, content, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (document_id, chunk_index) DO UPDATE
		 SET file_name = EXCLUDED.file_name,
		     content = EXCLUDED.content,
		     embedding = EXCLUDED.embedding,
		     created_at = EXCLUDED.created_at`,
		documentID,
		metadata.FileName,
		chunkIndex,
		metadata.ChunkText,
		pgvector.NewVector(embedding),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk %d: %w", chunkIndex, err)
	}
	return nil
}

// Search returns the filter.TopK chunks nearest to embedding, most similar
// first. Equal distances keep insertion order.
func (r *DocumentChunkRepository) Search(ctx context.Context, embedding []float32, filter domain.SearchFilter) ([]domain.SearchHit, error) {
	if filter.TopK <= 0 {
		return []domain.SearchHit{}, nil
	}

	query := `
		SELECT id, document_id, file_name, chunk_index, content,
		       1 - (embedding <=> $1) AS score
		FROM document_chunks
		WHERE TRUE`
	args := []any{pgvector.NewVector(embedding)}

	if filter.FileName != "" {
		args = append(args, filter.FileName)
		query += " AND file_name = $" + strconv.Itoa(len(args))
	}
	if filter.DocumentID != "" {
		args = append(args, filter.DocumentID)
		query += " AND document_id = $" + strconv.Itoa(len(args))
	}

	args = append(args, filter.TopK)
	query += " ORDER BY embedding <=> $1, id LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := make([]domain.SearchHit, 0, filter.TopK)
	for rows.Next() {
		var id int64
		var score float64
		var meta domain.ChunkMetadata
		if err := rows.Scan(&id, &meta.DocumentID, &meta.FileName, &meta.ChunkIndex, &meta.ChunkText, &score); err != nil {
			return nil, err
		}
		hits = append(hits, domain.SearchHit{
			ID:       strconv.FormatInt(id, 10),
			Score:    float32(score),
			Metadata: meta,
		})
	}

	return hits, rows.Err()
}

// CountByDocument returns how many chunks are stored for a document.
func (r *DocumentChunkRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM document_chunks WHERE document_id = $1`,
		documentID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetDocument summarizes the chunks stored for a document.
func (r *DocumentChunkRepository) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.QueryRow(ctx,
		`SELECT document_id, MIN(file_name), COUNT(*), MIN(created_at)
		 FROM document_chunks
		 WHERE document_id = $1
		 GROUP BY document_id`,
		documentID,
	).Scan(&doc.ID, &doc.FileName, &doc.ChunkCount, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ListDocuments lists stored documents, newest first, using keyset pagination.
func (r *DocumentChunkRepository) ListDocuments(ctx context.Context, limit int, cursor *pagination.Cursor) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT document_id, MIN(file_name), COUNT(*), MIN(created_at) AS first_created
		FROM document_chunks
		GROUP BY document_id`
	args := []any{}

	if cursor != nil {
		args = append(args, cursor.Timestamp, cursor.LastID)
		query += " HAVING (MIN(created_at), document_id) < ($1, $2)"
	}

	args = append(args, limit)
	query += " ORDER BY first_created DESC, document_id DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*domain.Document, 0, limit)
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.FileName, &doc.ChunkCount, &doc.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}
