// Package memstore holds the in-process implementations of the three keyed
// stores. Each store guards its map with a single mutex so a read-modify-
// write against one key can never interleave with another against the same
// key; copies are handed out so callers never alias stored records.
package memstore

import (
	"context"
	"sync"

	"telegram-merchant-pay/internal/domain"
	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

type SessionRepo struct {
	mu       sync.Mutex
	sessions map[int64]model.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: map[int64]model.Session{}}
}

func (r *SessionRepo) Get(ctx context.Context, chatID int64) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := s
	out.Data = cloneData(s.Data)
	return &out, nil
}

func (r *SessionRepo) Set(ctx context.Context, s *model.Session) error {
	if s == nil {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.Data = cloneData(s.Data)
	r.sessions[s.ChatID] = cp
	return nil
}

func (r *SessionRepo) Clear(ctx context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chatID)
	return nil
}

func cloneData(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
