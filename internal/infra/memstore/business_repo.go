package memstore

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"telegram-merchant-pay/internal/domain"
	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/repository"
)

var _ repository.BusinessRepository = (*BusinessRepo)(nil)

type BusinessRepo struct {
	mu         sync.Mutex
	businesses map[int64]model.Business
}

func NewBusinessRepo() *BusinessRepo {
	return &BusinessRepo{businesses: map[int64]model.Business{}}
}

func (r *BusinessRepo) Save(ctx context.Context, b *model.Business) error {
	if b == nil || b.MerchantID <= 0 {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.businesses[b.MerchantID] = *b
	return nil
}

func (r *BusinessRepo) FindByMerchant(ctx context.Context, merchantID int64) (*model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.businesses[merchantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := b
	return &out, nil
}

func (r *BusinessRepo) ApplySale(ctx context.Context, merchantID int64, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.businesses[merchantID]
	if !ok {
		return domain.ErrNotFound
	}
	b.ApplySale(amount)
	r.businesses[merchantID] = b
	return nil
}

func (r *BusinessRepo) CountAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.businesses)), nil
}
