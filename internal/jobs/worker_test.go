package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockAskLogPruneRepository struct {
	mock.Mock
}

func (m *MockAskLogPruneRepository) DeleteAskLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type countingProcessor struct {
	calls atomic.Int32
}

func (p *countingProcessor) ProcessJobs(context.Context) error {
	p.calls.Add(1)
	return nil
}

func TestWorker_StartStop(t *testing.T) {
	processor := &countingProcessor{}

	worker := NewWorker("test", processor, 20*time.Millisecond, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(context.Background())
	}()

	assert.Eventually(t, func() bool {
		return processor.calls.Load() > 0
	}, time.Second, 10*time.Millisecond)

	worker.Stop()
	worker.Stop()
	wg.Wait()
}

func TestWorker_ContextCancellation(t *testing.T) {
	processor := new(MockJobProcessor)
	processor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker("test", processor, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
	processor.AssertNotCalled(t, "ProcessJobs", mock.Anything)
}

func TestWorker_LogsProcessingErrors(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	processor := new(MockJobProcessor)
	processor.On("ProcessJobs", mock.Anything).Return(errors.New("db down"))

	worker := NewWorker("pruner", processor, 10*time.Millisecond, zap.New(core))
	go worker.Start(context.Background())

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("error processing jobs").Len() > 0
	}, time.Second, 10*time.Millisecond)
	worker.Stop()

	entry := logs.FilterMessage("error processing jobs").All()[0]
	assert.Equal(t, "pruner", entry.ContextMap()["worker"])
}

func TestAskLogPruner_DeletesBeforeCutoff(t *testing.T) {
	repo := new(MockAskLogPruneRepository)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	wantCutoff := now.Add(-30 * 24 * time.Hour)

	repo.On("DeleteAskLogsBefore", mock.Anything, wantCutoff).Return(int64(3), nil)

	pruner := NewAskLogPruner(repo, 30*24*time.Hour, nil)
	pruner.now = func() time.Time { return now }

	require.NoError(t, pruner.ProcessJobs(context.Background()))
	repo.AssertExpectations(t)
}

func TestAskLogPruner_PropagatesErrors(t *testing.T) {
	repo := new(MockAskLogPruneRepository)
	repo.On("DeleteAskLogsBefore", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	err := NewAskLogPruner(repo, time.Hour, nil).ProcessJobs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
