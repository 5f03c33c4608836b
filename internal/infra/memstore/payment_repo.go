package memstore

import (
	"context"
	"sort"
	"sync"

	"telegram-merchant-pay/internal/domain"
	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

type PaymentRepo struct {
	mu       sync.Mutex
	payments map[string]model.PaymentRecord
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{payments: map[string]model.PaymentRecord{}}
}

func (r *PaymentRepo) Save(ctx context.Context, p *model.PaymentRecord) error {
	if p == nil || p.ID == "" {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.ID] = *p
	return nil
}

func (r *PaymentRepo) FindByID(ctx context.Context, id string) (*model.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := p
	return &out, nil
}

func (r *PaymentRepo) ListByMerchant(ctx context.Context, merchantID int64) ([]*model.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PaymentRecord
	for _, p := range r.payments {
		if p.MerchantID == merchantID {
			cp := p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateStatusIfPending is the compare-and-swap settlement guard: the whole
// check-then-write happens under the store mutex.
func (r *PaymentRepo) UpdateStatusIfPending(ctx context.Context, id string, upd repository.SettlementUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = upd.Status
	p.RefID = upd.RefID
	p.FailureReason = upd.FailureReason
	p.CompletedAt = upd.CompletedAt
	r.payments[id] = p
	return true, nil
}

func (r *PaymentRepo) CountByStatus(ctx context.Context) (map[model.PaymentStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.PaymentStatus]int64{}
	for _, p := range r.payments {
		out[p.Status]++
	}
	return out, nil
}
