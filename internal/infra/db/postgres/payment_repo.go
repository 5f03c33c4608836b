package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-merchant-pay/internal/domain"
	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, merchant_id, amount, description, status, created_at, expires_at, ref_id, failure_reason, completed_at`

func (r *paymentRepo) Save(ctx context.Context, p *model.PaymentRecord) error {
	const q = `
INSERT INTO payments (` + paymentColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  status=$5, ref_id=$8, failure_reason=$9, completed_at=$10;`
	_, err := r.pool.Exec(ctx, q,
		p.ID, p.MerchantID, p.Amount, p.Description, p.Status,
		p.CreatedAt, p.ExpiresAt, p.RefID, p.FailureReason, p.CompletedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, id string) (*model.PaymentRecord, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1;`
	p := &model.PaymentRecord{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.MerchantID, &p.Amount, &p.Description, &p.Status,
		&p.CreatedAt, &p.ExpiresAt, &p.RefID, &p.FailureReason, &p.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrOperationFailed
	}
	return p, nil
}

func (r *paymentRepo) ListByMerchant(ctx context.Context, merchantID int64) ([]*model.PaymentRecord, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE merchant_id=$1 ORDER BY created_at;`
	rows, err := r.pool.Query(ctx, q, merchantID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.PaymentRecord
	for rows.Next() {
		p := &model.PaymentRecord{}
		if err := rows.Scan(
			&p.ID, &p.MerchantID, &p.Amount, &p.Description, &p.Status,
			&p.CreatedAt, &p.ExpiresAt, &p.RefID, &p.FailureReason, &p.CompletedAt); err != nil {
			return nil, domain.ErrOperationFailed
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateStatusIfPending relies on the WHERE status='pending' guard for the
// compare-and-swap; the row count tells us whether we won.
func (r *paymentRepo) UpdateStatusIfPending(ctx context.Context, id string, upd repository.SettlementUpdate) (bool, error) {
	const q = `
UPDATE payments
SET status=$2, ref_id=$3, failure_reason=$4, completed_at=$5
WHERE id=$1 AND status='pending';`
	tag, err := r.pool.Exec(ctx, q, id, upd.Status, upd.RefID, upd.FailureReason, upd.CompletedAt)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		// Distinguish missing from already-terminal.
		if _, err := r.FindByID(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (r *paymentRepo) CountByStatus(ctx context.Context) (map[model.PaymentStatus]int64, error) {
	const q = `SELECT status, COUNT(*) FROM payments GROUP BY status;`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	out := map[model.PaymentStatus]int64{}
	for rows.Next() {
		var status model.PaymentStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrOperationFailed
		}
		out[status] = n
	}
	return out, rows.Err()
}
