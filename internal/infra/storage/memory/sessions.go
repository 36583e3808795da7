package memory

import (
	"context"
	"strings"
	"sync"

	domainsession "gardiens/internal/domain/session"
)

// SessionRepository keeps sessions in memory. State is lost on restart.
type SessionRepository struct {
	mu    sync.RWMutex
	items map[domainsession.ID]*domainsession.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{items: make(map[domainsession.ID]*domainsession.Session)}
}

func (r *SessionRepository) ByID(ctx context.Context, id domainsession.ID) (*domainsession.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return nil, domainsession.ErrNotFound
	}
	return s.Clone(), nil
}

// Save stores a copy of s and bumps its version.
func (r *SessionRepository) Save(ctx context.Context, s *domainsession.Session) error {
	if s == nil || strings.TrimSpace(string(s.ID)) == "" {
		return domainsession.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Version++
	r.items[s.ID] = s.Clone()
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id domainsession.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainsession.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

var _ domainsession.Repository = (*SessionRepository)(nil)
