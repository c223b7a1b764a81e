package repository

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

// MemorySessionRepository keeps operator sessions in process memory.
// Sessions do not survive a restart.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	now      func() time.Time
}

// NewMemorySessionRepository constructs an empty in-memory session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]models.Session), now: time.Now}
}

// Save stores a copy of the session.
func (r *MemorySessionRepository) Save(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	r.sweepLocked()
	return nil
}

// Get returns the session unless it is missing or expired.
func (r *MemorySessionRepository) Get(_ context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || session.Expired(r.now()) {
		return nil, appErrors.ErrRecordNotFound
	}
	return &session, nil
}

// Delete removes a session if present.
func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (r *MemorySessionRepository) Ping(context.Context) error {
	return nil
}

func (r *MemorySessionRepository) sweepLocked() {
	now := r.now()
	for id, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, id)
		}
	}
}
