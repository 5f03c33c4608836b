package repository

import (
	"context"
	"time"

	"telegram-merchant-pay/internal/domain/model"
)

// SettlementUpdate carries the fields written when a payment leaves pending.
type SettlementUpdate struct {
	Status        model.PaymentStatus
	RefID         string
	FailureReason string
	CompletedAt   *time.Time
}

// PaymentRepository is the port for the payment ledger.
type PaymentRepository interface {
	Save(ctx context.Context, p *model.PaymentRecord) error
	FindByID(ctx context.Context, id string) (*model.PaymentRecord, error)
	ListByMerchant(ctx context.Context, merchantID int64) ([]*model.PaymentRecord, error)
	// UpdateStatusIfPending applies upd only when the record's status is
	// exactly pending at the moment of the write (compare-and-swap). It
	// returns false, nil when the record had already left pending.
	UpdateStatusIfPending(ctx context.Context, id string, upd SettlementUpdate) (bool, error)
	CountByStatus(ctx context.Context) (map[model.PaymentStatus]int64, error)
}
