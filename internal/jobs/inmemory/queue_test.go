package inmemory

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/dvloznov/statement-insights/internal/jobs"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(store jobs.JobStore) *Queue {
	return NewQueue(10, 2, store, logger.NewWithWriter(&bytes.Buffer{}))
}

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.AnalyzeJob {
	t.Helper()
	var job *jobs.AnalyzeJob
	require.Eventually(t, func() bool {
		var err error
		job, err = store.GetJob(context.Background(), jobID)
		return err == nil && job.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return job
}

func TestQueue_PublishAndConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := newTestQueue(store)
	defer q.Close()

	var seen atomic.Int32
	require.NoError(t, q.Start(ctx, func(ctx context.Context, job jobs.Job) error {
		aj, ok := job.(*jobs.AnalyzeJob)
		if assert.True(t, ok) {
			assert.Len(t, aj.Documents, 1)
		}
		seen.Add(1)
		return nil
	}))

	job := &jobs.AnalyzeJob{
		SessionID: "session-1",
		Documents: []domain.InputDocument{{Name: "a.pdf", MediaType: "application/pdf", Data: []byte("a")}},
	}
	require.NoError(t, q.PublishAnalyze(ctx, job))
	require.NotEmpty(t, job.JobID)

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	assert.Equal(t, int32(1), seen.Load())
	assert.Equal(t, 1, done.DocumentCount)
	assert.Equal(t, "session-1", done.SessionID)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
	assert.Nil(t, done.Documents, "documents are not stored")
}

func TestQueue_FailedJobIsNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := newTestQueue(store)
	defer q.Close()

	var calls atomic.Int32
	require.NoError(t, q.Start(ctx, func(ctx context.Context, job jobs.Job) error {
		calls.Add(1)
		return errors.New("quota exceeded")
	}))

	job := &jobs.AnalyzeJob{SessionID: "session-2"}
	require.NoError(t, q.PublishAnalyze(ctx, job))

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	assert.Equal(t, "quota exceeded", failed.Error)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueue_ClosedQueueRejects(t *testing.T) {
	q := newTestQueue(NewStore())
	require.NoError(t, q.Close())
	require.NoError(t, q.Close(), "closing twice is harmless")

	err := q.PublishAnalyze(context.Background(), &jobs.AnalyzeJob{})
	assert.ErrorIs(t, err, ErrQueueClosed)

	err = q.Start(context.Background(), func(ctx context.Context, job jobs.Job) error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_PublishHonoursContext(t *testing.T) {
	q := NewQueue(0, 1, nil, logger.NewWithWriter(&bytes.Buffer{}))
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.PublishAnalyze(ctx, &jobs.AnalyzeJob{})
	assert.ErrorIs(t, err, context.Canceled)
}
