package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-merchant-pay/internal/domain"
	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/adapter"
	"telegram-merchant-pay/internal/domain/ports/repository"
	"telegram-merchant-pay/internal/infra/i18n"
	"telegram-merchant-pay/internal/infra/logging"
	"telegram-merchant-pay/internal/infra/metrics"
)

// Notification is the gateway's payment-outcome callback payload.
type Notification struct {
	PaymentID string
	RefID     string
	Succeeded bool
	Reason    string
}

// SettlementResult tells the webhook handler what to acknowledge.
type SettlementResult string

const (
	SettlementCompleted SettlementResult = "completed"
	SettlementFailed    SettlementResult = "failed"
	SettlementDuplicate SettlementResult = "duplicate"
	SettlementNotFound  SettlementResult = "not_found"
)

const defaultFailureReason = "declined by gateway"

// SettlementHandler resolves gateway notifications against the ledger. The
// pending check is a compare-and-swap inside the ledger, so settlement is
// at-most-once even under concurrent delivery.
type SettlementHandler struct {
	payments   repository.PaymentRepository
	businesses repository.BusinessRepository
	sessions   repository.SessionRepository
	chat       adapter.ChatTransport
	bundle     *i18n.Bundle
	log        *zerolog.Logger

	async sync.WaitGroup
}

func NewSettlementHandler(
	payments repository.PaymentRepository,
	businesses repository.BusinessRepository,
	sessions repository.SessionRepository,
	chat adapter.ChatTransport,
	bundle *i18n.Bundle,
	logger *zerolog.Logger,
) *SettlementHandler {
	return &SettlementHandler{
		payments:   payments,
		businesses: businesses,
		sessions:   sessions,
		chat:       chat,
		bundle:     bundle,
		log:        logger,
	}
}

// Wait blocks until in-flight merchant notifications finish. Test helper.
func (h *SettlementHandler) Wait() { h.async.Wait() }

// Handle applies one notification. The returned error is only for internal
// faults; not-found and duplicates are reported through the result.
func (h *SettlementHandler) Handle(ctx context.Context, n Notification) (SettlementResult, error) {
	ctx = logging.WithTraceID(logging.WithPaymentID(ctx, n.PaymentID), uuid.NewString())
	log := logging.With(ctx, h.log)

	rec, err := h.payments.FindByID(ctx, n.PaymentID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Msg("settlement for unknown payment")
		metrics.IncSettlement(string(SettlementNotFound))
		return SettlementNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve payment: %w", err)
	}

	if !n.Succeeded {
		reason := n.Reason
		if reason == "" {
			reason = defaultFailureReason
		}
		applied, err := h.payments.UpdateStatusIfPending(ctx, rec.ID, repository.SettlementUpdate{
			Status:        model.PaymentStatusFailed,
			RefID:         n.RefID,
			FailureReason: reason,
		})
		if err != nil {
			return "", fmt.Errorf("mark payment failed: %w", err)
		}
		if !applied {
			h.logDuplicate(log, rec, n)
			metrics.IncSettlement(string(SettlementDuplicate))
			return SettlementDuplicate, nil
		}
		metrics.IncPayment(string(model.PaymentStatusFailed))
		metrics.IncSettlement(string(SettlementFailed))
		h.notifyMerchant(ctx, rec, false, reason, n.RefID)
		return SettlementFailed, nil
	}

	now := time.Now()
	applied, err := h.payments.UpdateStatusIfPending(ctx, rec.ID, repository.SettlementUpdate{
		Status:      model.PaymentStatusCompleted,
		RefID:       n.RefID,
		CompletedAt: &now,
	})
	if err != nil {
		return "", fmt.Errorf("mark payment completed: %w", err)
	}
	if !applied {
		h.logDuplicate(log, rec, n)
		metrics.IncSettlement(string(SettlementDuplicate))
		return SettlementDuplicate, nil
	}

	// Ledger first, registry second; counters move only on this path. A
	// missing profile is degenerate but must not fail the settlement.
	if err := h.businesses.ApplySale(ctx, rec.MerchantID, rec.Amount); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Int64("merchant_id", rec.MerchantID).Msg("settled payment has no business profile")
		} else {
			return "", fmt.Errorf("apply sale to registry: %w", err)
		}
	}

	metrics.IncPayment(string(model.PaymentStatusCompleted))
	metrics.IncSettlement(string(SettlementCompleted))
	amt, _ := rec.Amount.Float64()
	metrics.AddSettledRevenue(amt)

	h.notifyMerchant(ctx, rec, true, "", n.RefID)
	return SettlementCompleted, nil
}

// logDuplicate makes re-notification for a terminal record observable. A
// matching outcome is benign idempotent noise; a conflicting one is an
// anomaly, but neither mutates anything.
func (h *SettlementHandler) logDuplicate(log *zerolog.Logger, rec *model.PaymentRecord, n Notification) {
	stored, _ := h.payments.FindByID(context.Background(), rec.ID)
	matches := stored != nil &&
		((n.Succeeded && stored.Status == model.PaymentStatusCompleted) ||
			(!n.Succeeded && stored.Status == model.PaymentStatusFailed))
	ev := log.Warn()
	if matches {
		ev = log.Debug()
	}
	status := model.PaymentStatus("unknown")
	if stored != nil {
		status = stored.Status
	}
	ev.Str("stored_status", string(status)).
		Bool("outcome_matches", matches).
		Str("ref_id", n.RefID).
		Msg("settlement notification for non-pending payment")
}

// notifyMerchant delivers the outcome over chat, fire-and-forget. Delivery
// failure never rolls back the applied settlement.
func (h *SettlementHandler) notifyMerchant(ctx context.Context, rec *model.PaymentRecord, succeeded bool, reason, refID string) {
	lang := i18n.LangEnglish
	if sess, err := h.sessions.Get(ctx, rec.MerchantID); err == nil && sess.Lang != "" {
		lang = sess.Lang
	}
	tr := h.bundle.For(lang)

	var text string
	if succeeded {
		text = tr.T("settle_success", rec.Amount.String(), rec.Description, refID)
	} else {
		text = tr.T("settle_failed", rec.Description, reason)
	}

	msg := adapter.OutboundMessage{ChatID: rec.MerchantID, Text: text}
	h.async.Add(1)
	go func() {
		defer h.async.Done()
		if err := h.chat.Send(context.WithoutCancel(ctx), msg); err != nil {
			logging.With(ctx, h.log).Warn().Err(err).Int64("chat_id", rec.MerchantID).Msg("settlement notification delivery failed")
		}
	}()
}
