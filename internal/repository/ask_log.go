package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AskLogRepository stores answered questions for later evaluation.
type AskLogRepository struct {
	db dbtx
}

func NewAskLogRepository(pool *pgxpool.Pool) *AskLogRepository {
	return &AskLogRepository{db: pool}
}

func (r *AskLogRepository) CreateAskLog(ctx context.Context, entry service.AskLogEntry) (string, error) {
	filters := map[string]any{}
	filters["question_length"] = len(entry.Question)
	if entry.FileName != "" {
		filters["file_name"] = entry.FileName
	}
	if entry.DocumentID != "" {
		filters["document_id"] = entry.DocumentID
	}

	citations := entry.Citations
	if citations == nil {
		citations = []string{}
	}

	filtersJSON, _ := json.Marshal(filters)
	citationsJSON, _ := json.Marshal(citations)

	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO ask_logs (question, top_k, filters, citations, citation_count, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		entry.Question,
		entry.TopK,
		filtersJSON,
		citationsJSON,
		len(citations),
		entry.DurationMs,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// DeleteAskLogsBefore removes ask logs created before cutoff and returns how
// many were deleted.
func (r *AskLogRepository) DeleteAskLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM ask_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
