package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/statement-insights/internal/jobs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrQueueClosed is returned when publishing to or starting a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// DefaultWorkerCount is used when the queue is created with no worker count.
const DefaultWorkerCount = 2

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// Jobs are lost on restart and run at most once.
type Queue struct {
	jobChan     chan *jobs.AnalyzeJob
	closeChan   chan struct{}
	wg          sync.WaitGroup
	mu          sync.RWMutex
	store       jobs.JobStore
	workerCount int
	log         zerolog.Logger
	closed      bool
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before PublishAnalyze blocks.
func NewQueue(bufferSize, workerCount int, store jobs.JobStore, log zerolog.Logger) *Queue {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &Queue{
		jobChan:     make(chan *jobs.AnalyzeJob, bufferSize),
		closeChan:   make(chan struct{}),
		store:       store,
		workerCount: workerCount,
		log:         log.With().Str("component", "job_queue").Logger(),
	}
}

// PublishAnalyze implements the Publisher interface.
// It enqueues a statement analysis job for asynchronous processing.
func (q *Queue) PublishAnalyze(ctx context.Context, job *jobs.AnalyzeJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.DocumentCount = len(job.Documents)

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("PublishAnalyze: save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		q.log.Debug().Str("job_id", job.JobID).Str("session_id", job.SessionID).Msg("Job enqueued")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return ErrQueueClosed
	}
}

// Start implements the Consumer interface.
// It starts workerCount goroutines that pass each job to handler.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	q.log.Info().Int("workers", q.workerCount).Msg("Job queue started")
	return nil
}

// worker processes jobs from the queue.
func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}

			q.processJob(ctx, job, handler)
		}
	}
}

// processJob executes a single job. Failures are recorded, not retried.
func (q *Queue) processJob(ctx context.Context, job *jobs.AnalyzeJob, handler jobs.JobHandler) {
	start := time.Now()
	q.updateStatus(ctx, job.JobID, jobs.JobStatusRunning, "")

	err := handler(ctx, job)

	// Documents are not needed once the job has run.
	job.Documents = nil

	if err != nil {
		q.log.Error().Err(err).Str("job_id", job.JobID).Msg("Job failed")
		q.updateStatus(ctx, job.JobID, jobs.JobStatusFailed, err.Error())
		return
	}

	q.log.Info().
		Str("job_id", job.JobID).
		Dur("duration", time.Since(start)).
		Msg("Job completed")
	q.updateStatus(ctx, job.JobID, jobs.JobStatusCompleted, "")
}

func (q *Queue) updateStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) {
	if q.store == nil {
		return
	}
	if err := q.store.UpdateJobStatus(ctx, jobID, status, errorMsg); err != nil {
		q.log.Error().Err(err).Str("job_id", jobID).Str("status", string(status)).Msg("Failed to update job status")
	}
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
// It closes the queue and releases resources.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

// Ensure Queue implements both Publisher and Consumer interfaces.
var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
