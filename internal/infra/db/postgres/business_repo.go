package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"telegram-merchant-pay/internal/domain"
	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/repository"
)

var _ repository.BusinessRepository = (*businessRepo)(nil)

type businessRepo struct{ pool *pgxpool.Pool }

func NewBusinessRepo(pool *pgxpool.Pool) *businessRepo {
	return &businessRepo{pool: pool}
}

func (r *businessRepo) Save(ctx context.Context, b *model.Business) error {
	// Re-registration overwrites the profile and resets the counters.
	const q = `
INSERT INTO businesses (merchant_id, id, name, phone, registered_at, total_sales, today_sales, tx_count)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (merchant_id) DO UPDATE SET
  id=$2, name=$3, phone=$4, registered_at=$5, total_sales=$6, today_sales=$7, tx_count=$8;`
	_, err := r.pool.Exec(ctx, q,
		b.MerchantID, b.ID, b.Name, b.Phone, b.RegisteredAt, b.TotalSales, b.TodaySales, b.TxCount)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *businessRepo) FindByMerchant(ctx context.Context, merchantID int64) (*model.Business, error) {
	const q = `SELECT merchant_id, id, name, phone, registered_at, total_sales, today_sales, tx_count
FROM businesses WHERE merchant_id=$1;`
	b := &model.Business{}
	err := r.pool.QueryRow(ctx, q, merchantID).Scan(
		&b.MerchantID, &b.ID, &b.Name, &b.Phone, &b.RegisteredAt,
		&b.TotalSales, &b.TodaySales, &b.TxCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrOperationFailed
	}
	return b, nil
}

func (r *businessRepo) ApplySale(ctx context.Context, merchantID int64, amount decimal.Decimal) error {
	const q = `
UPDATE businesses
SET total_sales = total_sales + $2,
    today_sales = today_sales + $2,
    tx_count    = tx_count + 1
WHERE merchant_id=$1;`
	tag, err := r.pool.Exec(ctx, q, merchantID, amount)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *businessRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM businesses;`).Scan(&n); err != nil {
		return 0, domain.ErrOperationFailed
	}
	return n, nil
}
