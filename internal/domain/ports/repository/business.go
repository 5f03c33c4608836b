package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"telegram-merchant-pay/internal/domain/model"
)

// BusinessRepository is the port for the business registry.
type BusinessRepository interface {
	// Save creates or overwrites the profile keyed by MerchantID.
	Save(ctx context.Context, b *model.Business) error
	FindByMerchant(ctx context.Context, merchantID int64) (*model.Business, error)
	// ApplySale atomically bumps all-time total, today total and the
	// transaction count for the owning merchant.
	ApplySale(ctx context.Context, merchantID int64, amount decimal.Decimal) error
	CountAll(ctx context.Context) (int64, error)
}
