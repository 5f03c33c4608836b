package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"telegram-merchant-pay/internal/domain"
)

// Business is a merchant's registered business profile. At most one exists
// per merchant identity; re-registration overwrites the previous profile and
// resets the sales counters.
type Business struct {
	ID           string
	MerchantID   int64 // chat identity of the owner
	Name         string
	Phone        string
	RegisteredAt time.Time

	// Counters below are mutated only by the settlement path.
	TotalSales decimal.Decimal
	TodaySales decimal.Decimal
	TxCount    int64
}

func NewBusiness(merchantID int64, name, phone string) (*Business, error) {
	name = strings.TrimSpace(name)
	if merchantID <= 0 || name == "" || phone == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Business{
		ID:           uuid.NewString(),
		MerchantID:   merchantID,
		Name:         name,
		Phone:        phone,
		RegisteredAt: time.Now(),
		TotalSales:   decimal.Zero,
		TodaySales:   decimal.Zero,
	}, nil
}

// ApplySale records one settled payment against the counters. The "today"
// counter is bumped unconditionally at settlement time regardless of when
// the payment was created.
func (b *Business) ApplySale(amount decimal.Decimal) {
	b.TotalSales = b.TotalSales.Add(amount)
	b.TodaySales = b.TodaySales.Add(amount)
	b.TxCount++
}
