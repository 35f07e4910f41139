package session

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when a session ID is unknown.
var ErrNotFound = errors.New("session not found")

// Store keeps live sessions by ID.
type Store interface {
	// Create registers a new Idle session.
	Create(ctx context.Context) (*Session, error)

	// Get returns the live session, not a copy.
	Get(ctx context.Context, id string) (*Session, error)

	// List returns snapshots of every session, oldest first.
	List(ctx context.Context) ([]Snapshot, error)

	// Delete forgets a session.
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory Store. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	sess := New()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess

	return sess, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	result := make([]Snapshot, 0, len(s.sessions))
	for _, sess := range s.sessions {
		result = append(result, sess.Snapshot())
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
