package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/docqa/internal/logging"
	"go.uber.org/zap"
)

// AskLogPruneRepository deletes ask logs older than a cutoff.
type AskLogPruneRepository interface {
	DeleteAskLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AskLogPruner removes ask logs that are older than the retention period.
type AskLogPruner struct {
	repo      AskLogPruneRepository
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewAskLogPruner(repo AskLogPruneRepository, retention time.Duration, logger *zap.Logger) *AskLogPruner {
	return &AskLogPruner{
		repo:      repo,
		retention: retention,
		now:       time.Now,
		logger:    logging.OrNop(logger),
	}
}

// ProcessJobs implements the JobProcessor interface
func (p *AskLogPruner) ProcessJobs(ctx context.Context) error {
	cutoff := p.now().Add(-p.retention)

	deleted, err := p.repo.DeleteAskLogsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune ask logs: %w", err)
	}
	if deleted > 0 {
		p.logger.Info("pruned ask logs", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return nil
}
