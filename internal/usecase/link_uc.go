package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-merchant-pay/internal/domain"
	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/adapter"
	"telegram-merchant-pay/internal/domain/ports/repository"
	"telegram-merchant-pay/internal/infra/logging"
	"telegram-merchant-pay/internal/infra/metrics"
)

// Disposition is what a public visitor of a payment link sees.
type Disposition string

const (
	DispositionNotFound    Disposition = "not_found"
	DispositionCompleted   Disposition = "completed"
	DispositionFailed      Disposition = "failed"
	DispositionExpired     Disposition = "expired"
	DispositionRedirect    Disposition = "redirect"
	DispositionUnavailable Disposition = "unavailable"
)

// maxGatewayDescription bounds the free text we forward to the provider.
const maxGatewayDescription = 255

// LinkResolver serves public payment-link visits. It is the only writer of
// the pending→expired transition, and it writes nothing on any other path.
type LinkResolver struct {
	payments   repository.PaymentRepository
	businesses repository.BusinessRepository
	gateway    adapter.PaymentGateway
	log        *zerolog.Logger
}

func NewLinkResolver(
	payments repository.PaymentRepository,
	businesses repository.BusinessRepository,
	gateway adapter.PaymentGateway,
	logger *zerolog.Logger,
) *LinkResolver {
	return &LinkResolver{payments: payments, businesses: businesses, gateway: gateway, log: logger}
}

// Resolve returns the disposition for paymentID and, for DispositionRedirect,
// the gateway URL to send the visitor to.
func (r *LinkResolver) Resolve(ctx context.Context, paymentID string) (Disposition, string) {
	ctx = logging.WithPaymentID(ctx, paymentID)
	log := logging.With(ctx, r.log)

	rec, err := r.payments.FindByID(ctx, paymentID)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncLinkVisit(string(DispositionNotFound))
		return DispositionNotFound, ""
	}
	if err != nil {
		log.Error().Err(err).Msg("resolve payment link")
		metrics.IncLinkVisit(string(DispositionUnavailable))
		return DispositionUnavailable, ""
	}

	switch rec.Status {
	case model.PaymentStatusCompleted:
		metrics.IncLinkVisit(string(DispositionCompleted))
		return DispositionCompleted, ""
	case model.PaymentStatusFailed:
		metrics.IncLinkVisit(string(DispositionFailed))
		return DispositionFailed, ""
	case model.PaymentStatusExpired:
		metrics.IncLinkVisit(string(DispositionExpired))
		return DispositionExpired, ""
	}

	if rec.ExpiredAt(time.Now()) {
		// Lazy expiry: only ever pending→expired, and only here. A lost
		// race against a concurrent settlement leaves the record as the
		// winner wrote it.
		applied, err := r.payments.UpdateStatusIfPending(ctx, rec.ID, repository.SettlementUpdate{
			Status: model.PaymentStatusExpired,
		})
		if err != nil {
			log.Error().Err(err).Msg("expire payment")
			metrics.IncLinkVisit(string(DispositionUnavailable))
			return DispositionUnavailable, ""
		}
		if applied {
			metrics.IncPayment(string(model.PaymentStatusExpired))
		}
		metrics.IncLinkVisit(string(DispositionExpired))
		return DispositionExpired, ""
	}

	customer := adapter.CustomerInfo{}
	if b, err := r.businesses.FindByMerchant(ctx, rec.MerchantID); err == nil {
		customer.Name = b.Name
		customer.Phone = b.Phone
	}

	description := rec.Description
	if len(description) > maxGatewayDescription {
		description = description[:maxGatewayDescription]
	}

	redirectURL, err := r.gateway.CreatePayment(ctx, rec.Amount, description, rec.ID, customer)
	if err != nil {
		// No partial mutation regardless of gateway outcome.
		log.Warn().Err(fmt.Errorf("gateway create payment: %w", err)).Msg("gateway unavailable for link visit")
		metrics.IncLinkVisit(string(DispositionUnavailable))
		return DispositionUnavailable, ""
	}

	metrics.IncLinkVisit(string(DispositionRedirect))
	return DispositionRedirect, redirectURL
}
