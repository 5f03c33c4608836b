package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"telegram-merchant-pay/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusExpired   PaymentStatus = "expired"
)

// IsTerminal reports whether no further status transition is allowed.
func (s PaymentStatus) IsTerminal() bool { return s != PaymentStatusPending }

// PaymentExpiry is the horizon after which a still-pending link expires.
const PaymentExpiry = 24 * time.Hour

// PaymentRecord is one collectable payment created by a merchant. Amount and
// description are immutable after creation; the status moves exactly once
// out of pending.
type PaymentRecord struct {
	ID          string // ULID, unguessable
	MerchantID  int64
	Amount      decimal.Decimal
	Description string
	Status      PaymentStatus
	CreatedAt   time.Time
	ExpiresAt   time.Time

	// Settlement fields, set only when the record leaves pending.
	RefID         string
	FailureReason string
	CompletedAt   *time.Time
}

func NewPaymentRecord(id string, merchantID int64, amount decimal.Decimal, description string) (*PaymentRecord, error) {
	description = strings.TrimSpace(description)
	if id == "" || merchantID <= 0 || description == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &PaymentRecord{
		ID:          id,
		MerchantID:  merchantID,
		Amount:      amount,
		Description: description,
		Status:      PaymentStatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(PaymentExpiry),
	}, nil
}

func (p *PaymentRecord) ExpiredAt(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
