//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/cloo-solutions/docqa/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskLogRepository_CreateAskLog(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	repo := NewAskLogRepository(pool)

	id, err := repo.CreateAskLog(ctx, service.AskLogEntry{
		Question:   "What is the refund window?",
		TopK:       3,
		FileName:   "policy.md",
		Citations:  []string{"policy.md: Refunds are accepted within 30 days."},
		DurationMs: 42,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	var question string
	var citationCount int
	var fileName string
	err = pool.QueryRow(ctx,
		`SELECT question, citation_count, filters->>'file_name' FROM ask_logs WHERE id = $1`, id,
	).Scan(&question, &citationCount, &fileName)
	require.NoError(t, err)
	assert.Equal(t, "What is the refund window?", question)
	assert.Equal(t, 1, citationCount)
	assert.Equal(t, "policy.md", fileName)
}

func TestAskLogRepository_NilCitations(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	repo := NewAskLogRepository(pool)

	id, err := repo.CreateAskLog(ctx, service.AskLogEntry{Question: "Anything?", TopK: 1})
	require.NoError(t, err)

	var citationCount int
	require.NoError(t, pool.QueryRow(ctx, `SELECT citation_count FROM ask_logs WHERE id = $1`, id).Scan(&citationCount))
	assert.Equal(t, 0, citationCount)
}

func TestAskLogRepository_DeleteAskLogsBefore(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	repo := NewAskLogRepository(pool)

	oldID, err := repo.CreateAskLog(ctx, service.AskLogEntry{Question: "old", TopK: 1})
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE ask_logs SET created_at = NOW() - INTERVAL '40 days' WHERE id = $1`, oldID)
	require.NoError(t, err)

	_, err = repo.CreateAskLog(ctx, service.AskLogEntry{Question: "new", TopK: 1})
	require.NoError(t, err)

	deleted, err := repo.DeleteAskLogsBefore(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []string
	rows, err := pool.Query(ctx, `SELECT question FROM ask_logs`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var q string
		require.NoError(t, rows.Scan(&q))
		remaining = append(remaining, q)
	}
	assert.Equal(t, []string{"new"}, remaining)
}
