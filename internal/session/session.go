package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/google/uuid"
)

// State is the application state a session is in.
type State string

const (
	// StateIdle waits for a submission.
	StateIdle State = "IDLE"
	// StateProcessing has one analysis in flight.
	StateProcessing State = "PROCESSING"
	// StateSuccess holds a result.
	StateSuccess State = "SUCCESS"
	// StateError holds the message of the failed analysis.
	StateError State = "ERROR"
)

var (
	// ErrBusy is returned when a session is asked to change while an
	// analysis is in flight.
	ErrBusy = errors.New("analysis already in progress")

	// ErrInvalidTransition is returned for any transition the state machine
	// does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNoQualifyingDocuments is returned when a submission holds no image
	// or PDF file. The session is left untouched.
	ErrNoQualifyingDocuments = errors.New("no qualifying documents: upload images or PDF files")
)

// Session is the per-user application state. All methods are safe for
// concurrent use.
type Session struct {
	mu        sync.Mutex
	id        string
	state     State
	result    *domain.AnalysisResult
	errMsg    string
	fileCount int
	createdAt time.Time
	updatedAt time.Time
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID        string                 `json:"id"`
	State     State                  `json:"state"`
	Result    *domain.AnalysisResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	FileCount int                    `json:"file_count"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// New returns an Idle session with a fresh ID.
func New() *Session {
	now := time.Now()
	return &Session{
		id:        uuid.New().String(),
		state:     StateIdle,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin moves Idle to Processing for a submission of fileCount qualifying
// files.
func (s *Session) Begin(fileCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
	case StateProcessing:
		return ErrBusy
	default:
		return fmt.Errorf("Begin: %s -> %s: %w", s.state, StateProcessing, ErrInvalidTransition)
	}
	if fileCount <= 0 {
		return ErrNoQualifyingDocuments
	}

	s.state = StateProcessing
	s.fileCount = fileCount
	s.touch()
	return nil
}

// Succeed records the result of the in-flight analysis.
func (s *Session) Succeed(result *domain.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateProcessing {
		return fmt.Errorf("Succeed: %s -> %s: %w", s.state, StateSuccess, ErrInvalidTransition)
	}
	if result == nil {
		return errors.New("Succeed: result is nil")
	}

	s.state = StateSuccess
	s.result = result
	s.touch()
	return nil
}

// Fail records the error of the in-flight analysis. The message is kept
// verbatim.
func (s *Session) Fail(cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateProcessing {
		return fmt.Errorf("Fail: %s -> %s: %w", s.state, StateError, ErrInvalidTransition)
	}

	s.state = StateError
	if cause != nil {
		s.errMsg = cause.Error()
	} else {
		s.errMsg = "analysis failed"
	}
	s.touch()
	return nil
}

// Reset returns a Success or Error session to Idle, discarding the result
// and the error. Resetting an Idle session does nothing.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
		return nil
	case StateProcessing:
		return ErrBusy
	}

	s.state = StateIdle
	s.result = nil
	s.errMsg = ""
	s.fileCount = 0
	s.touch()
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:        s.id,
		State:     s.state,
		Result:    s.result,
		Error:     s.errMsg,
		FileCount: s.fileCount,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}
