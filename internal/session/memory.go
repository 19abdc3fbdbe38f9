package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart and are not shared between instances.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Claims
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Claims),
	}
}

func (s *MemoryStore) Create(_ context.Context, claims Claims) (string, error) {
	id := uuid.NewString()
	now := s.now()
	claims.IssuedAt = now
	claims.ExpiresAt = now.Add(s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)
	s.sessions[id] = claims
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Claims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(claims.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	return &claims, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// sweep drops expired sessions. Callers hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	for id, claims := range s.sessions {
		if !now.Before(claims.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}
