package jobs

import (
	"context"
	"time"

	"github.com/dvloznov/statement-insights/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAnalyzeStatement represents a statement analysis job.
	JobTypeAnalyzeStatement JobType = "analyze_statement"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// AnalyzeJob asks a worker to analyze the documents of one session.
type AnalyzeJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// SessionID is the session whose state the job drives.
	SessionID string `json:"session_id"`

	// Documents are the qualifying documents to analyze. They are held in
	// memory only and never serialized.
	Documents []domain.InputDocument `json:"-"`

	// DocumentCount is the number of documents in the job.
	DocumentCount int `json:"document_count"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *AnalyzeJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *AnalyzeJob) GetType() JobType {
	return JobTypeAnalyzeStatement
}

// GetStatus implements the Job interface.
func (j *AnalyzeJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishAnalyze publishes a statement analysis job.
	PublishAnalyze(ctx context.Context, job *AnalyzeJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. A returned error marks
// the job failed; jobs are never retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *AnalyzeJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*AnalyzeJob, error)

	// ListJobs retrieves jobs with optional filtering, oldest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalyzeJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// SessionID filters jobs by session ID.
	SessionID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
