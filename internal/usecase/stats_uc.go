package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/repository"
)

// Stats is the admin-facing snapshot of the platform.
type Stats struct {
	Merchants        int64                         `json:"merchants"`
	PaymentsByStatus map[model.PaymentStatus]int64 `json:"payments_by_status"`
}

type StatsUseCase struct {
	businesses repository.BusinessRepository
	payments   repository.PaymentRepository
	log        *zerolog.Logger
}

func NewStatsUseCase(businesses repository.BusinessRepository, payments repository.PaymentRepository, logger *zerolog.Logger) *StatsUseCase {
	return &StatsUseCase{businesses: businesses, payments: payments, log: logger}
}

func (u *StatsUseCase) Snapshot(ctx context.Context) (*Stats, error) {
	merchants, err := u.businesses.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count merchants: %w", err)
	}
	byStatus, err := u.payments.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}
	return &Stats{Merchants: merchants, PaymentsByStatus: byStatus}, nil
}
