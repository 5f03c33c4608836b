package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/infra/memstore"
	"telegram-merchant-pay/internal/usecase"
)

type settlementDeps struct {
	sessions   *memstore.SessionRepo
	businesses *memstore.BusinessRepo
	payments   *memstore.PaymentRepo
	chat       *MockChat
	handler    *usecase.SettlementHandler
}

func newSettlementDeps() *settlementDeps {
	d := &settlementDeps{
		sessions:   memstore.NewSessionRepo(),
		businesses: memstore.NewBusinessRepo(),
		payments:   memstore.NewPaymentRepo(),
		chat:       &MockChat{},
	}
	d.handler = usecase.NewSettlementHandler(
		d.payments, d.businesses, d.sessions,
		d.chat, newTestBundle(), newTestLogger(),
	)
	return d
}

// seed stores a registered business and one pending record for merchant 100.
func (d *settlementDeps) seed(t *testing.T, amount int64) *model.PaymentRecord {
	t.Helper()
	ctx := context.Background()
	b, err := model.NewBusiness(100, "Acme Foods", "+966501234567")
	if err != nil {
		t.Fatalf("seed business: %v", err)
	}
	if err := d.businesses.Save(ctx, b); err != nil {
		t.Fatalf("save business: %v", err)
	}
	rec, err := model.NewPaymentRecord("pay-1", 100, decimal.NewFromInt(amount), "Coffee order")
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	if err := d.payments.Save(ctx, rec); err != nil {
		t.Fatalf("save payment: %v", err)
	}
	return rec
}

func TestSettlementHandler_Success(t *testing.T) {
	ctx := context.Background()
	deps := newSettlementDeps()
	deps.seed(t, 250)

	result, err := deps.handler.Handle(ctx, usecase.Notification{
		PaymentID: "pay-1",
		RefID:     "gw-ref-9",
		Succeeded: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != usecase.SettlementCompleted {
		t.Fatalf("expected completed, got %q", result)
	}

	rec, _ := deps.payments.FindByID(ctx, "pay-1")
	if rec.Status != model.PaymentStatusCompleted {
		t.Errorf("expected record completed, got %q", rec.Status)
	}
	if rec.RefID != "gw-ref-9" {
		t.Errorf("expected gateway ref stored, got %q", rec.RefID)
	}
	if rec.CompletedAt == nil {
		t.Error("expected completion timestamp to be set")
	}

	b, _ := deps.businesses.FindByMerchant(ctx, 100)
	if !b.TotalSales.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected total sales 250, got %s", b.TotalSales)
	}
	if !b.TodaySales.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected today sales 250, got %s", b.TodaySales)
	}
	if b.TxCount != 1 {
		t.Errorf("expected tx count 1, got %d", b.TxCount)
	}

	deps.handler.Wait()
	msg, ok := deps.chat.FindContaining("Payment received")
	if !ok {
		t.Fatal("expected a success notification to the merchant")
	}
	if msg.ChatID != 100 {
		t.Errorf("expected notification to merchant chat 100, got %d", msg.ChatID)
	}
	if !strings.Contains(msg.Text, "gw-ref-9") {
		t.Errorf("expected gateway ref in notification, got %q", msg.Text)
	}
}

func TestSettlementHandler_Failure(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the record failed with the given reason", func(t *testing.T) {
		deps := newSettlementDeps()
		deps.seed(t, 250)

		result, err := deps.handler.Handle(ctx, usecase.Notification{
			PaymentID: "pay-1",
			RefID:     "gw-ref-9",
			Succeeded: false,
			Reason:    "insufficient funds",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != usecase.SettlementFailed {
			t.Fatalf("expected failed, got %q", result)
		}

		rec, _ := deps.payments.FindByID(ctx, "pay-1")
		if rec.Status != model.PaymentStatusFailed {
			t.Errorf("expected record failed, got %q", rec.Status)
		}
		if rec.FailureReason != "insufficient funds" {
			t.Errorf("expected failure reason stored, got %q", rec.FailureReason)
		}

		// Counters never move on failure.
		b, _ := deps.businesses.FindByMerchant(ctx, 100)
		if !b.TotalSales.IsZero() || b.TxCount != 0 {
			t.Errorf("expected untouched counters, got total=%s count=%d", b.TotalSales, b.TxCount)
		}

		deps.handler.Wait()
		if _, ok := deps.chat.FindContaining("Payment failed"); !ok {
			t.Error("expected a failure notification to the merchant")
		}
	})

	t.Run("empty reason falls back to a default", func(t *testing.T) {
		deps := newSettlementDeps()
		deps.seed(t, 250)

		if _, err := deps.handler.Handle(ctx, usecase.Notification{PaymentID: "pay-1", Succeeded: false}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec, _ := deps.payments.FindByID(ctx, "pay-1")
		if rec.FailureReason == "" {
			t.Error("expected a non-empty default failure reason")
		}
	})
}

func TestSettlementHandler_Duplicate(t *testing.T) {
	ctx := context.Background()

	t.Run("repeat of the same outcome is acknowledged without changes", func(t *testing.T) {
		deps := newSettlementDeps()
		deps.seed(t, 250)
		note := usecase.Notification{PaymentID: "pay-1", RefID: "gw-ref-9", Succeeded: true}

		if _, err := deps.handler.Handle(ctx, note); err != nil {
			t.Fatalf("first delivery: %v", err)
		}
		result, err := deps.handler.Handle(ctx, note)
		if err != nil {
			t.Fatalf("second delivery: %v", err)
		}
		if result != usecase.SettlementDuplicate {
			t.Fatalf("expected duplicate, got %q", result)
		}

		// Counters moved exactly once.
		b, _ := deps.businesses.FindByMerchant(ctx, 100)
		if b.TxCount != 1 {
			t.Errorf("expected tx count 1 after duplicate, got %d", b.TxCount)
		}
		if !b.TotalSales.Equal(decimal.NewFromInt(250)) {
			t.Errorf("expected total sales 250 after duplicate, got %s", b.TotalSales)
		}
	})

	t.Run("conflicting outcome never flips a terminal record", func(t *testing.T) {
		deps := newSettlementDeps()
		deps.seed(t, 250)

		if _, err := deps.handler.Handle(ctx, usecase.Notification{PaymentID: "pay-1", RefID: "a", Succeeded: true}); err != nil {
			t.Fatalf("first delivery: %v", err)
		}
		result, err := deps.handler.Handle(ctx, usecase.Notification{PaymentID: "pay-1", RefID: "b", Succeeded: false, Reason: "late decline"})
		if err != nil {
			t.Fatalf("conflicting delivery: %v", err)
		}
		if result != usecase.SettlementDuplicate {
			t.Fatalf("expected duplicate, got %q", result)
		}

		rec, _ := deps.payments.FindByID(ctx, "pay-1")
		if rec.Status != model.PaymentStatusCompleted {
			t.Errorf("expected record to stay completed, got %q", rec.Status)
		}
		if rec.RefID != "a" {
			t.Errorf("expected original ref retained, got %q", rec.RefID)
		}
	})
}

func TestSettlementHandler_NotFound(t *testing.T) {
	deps := newSettlementDeps()

	result, err := deps.handler.Handle(context.Background(), usecase.Notification{PaymentID: "nope", Succeeded: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != usecase.SettlementNotFound {
		t.Fatalf("expected not_found, got %q", result)
	}
	if deps.chat.Count() != 0 {
		t.Error("expected no merchant notification")
	}
}

func TestSettlementHandler_MissingProfileStillSettles(t *testing.T) {
	ctx := context.Background()
	deps := newSettlementDeps()
	// Payment exists but the merchant profile was never registered.
	rec, err := model.NewPaymentRecord("pay-1", 100, decimal.NewFromInt(40), "Coffee order")
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	if err := deps.payments.Save(ctx, rec); err != nil {
		t.Fatalf("save payment: %v", err)
	}

	result, err := deps.handler.Handle(ctx, usecase.Notification{PaymentID: "pay-1", Succeeded: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != usecase.SettlementCompleted {
		t.Fatalf("expected completed despite missing profile, got %q", result)
	}
	stored, _ := deps.payments.FindByID(ctx, "pay-1")
	if stored.Status != model.PaymentStatusCompleted {
		t.Errorf("expected completed record, got %q", stored.Status)
	}
}

func TestSettlementHandler_NotifiesInMerchantLanguage(t *testing.T) {
	ctx := context.Background()
	deps := newSettlementDeps()
	deps.seed(t, 250)

	sess := model.NewSession(100)
	sess.Lang = "ar"
	sess.Reset()
	if err := deps.sessions.Set(ctx, sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	if _, err := deps.handler.Handle(ctx, usecase.Notification{PaymentID: "pay-1", RefID: "r", Succeeded: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	deps.handler.Wait()

	last := deps.chat.Last()
	if strings.Contains(last.Text, "Payment received") {
		t.Errorf("expected the Arabic notification, got %q", last.Text)
	}
}
