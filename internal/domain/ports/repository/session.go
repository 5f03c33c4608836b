package repository

import (
	"context"

	"telegram-merchant-pay/internal/domain/model"
)

// SessionRepository is the port for a merchant's conversational state.
// Get returns domain.ErrNotFound when the merchant has no session yet.
type SessionRepository interface {
	Get(ctx context.Context, chatID int64) (*model.Session, error)
	Set(ctx context.Context, s *model.Session) error
	Clear(ctx context.Context, chatID int64) error
}
