package usecase_test

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/adapter"
	"telegram-merchant-pay/internal/identifier"
	"telegram-merchant-pay/internal/infra/i18n"
	"telegram-merchant-pay/internal/infra/memstore"
	"telegram-merchant-pay/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestBundle() *i18n.Bundle {
	b, err := i18n.NewBundle(i18n.LocalesFS)
	if err != nil {
		panic(err)
	}
	return b
}

// ---- Mock ChatTransport ----

type MockChat struct {
	mu   sync.Mutex
	Sent []adapter.OutboundMessage

	SendFunc func(ctx context.Context, msg adapter.OutboundMessage) error
}

var _ adapter.ChatTransport = (*MockChat)(nil)

func (m *MockChat) Send(ctx context.Context, msg adapter.OutboundMessage) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// Last returns the most recent message, or a zero value when none were sent.
func (m *MockChat) Last() adapter.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return adapter.OutboundMessage{}
	}
	return m.Sent[len(m.Sent)-1]
}

func (m *MockChat) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// FindContaining returns the first sent message whose text contains substr.
func (m *MockChat) FindContaining(substr string) (adapter.OutboundMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.Sent {
		if strings.Contains(msg.Text, substr) {
			return msg, true
		}
	}
	return adapter.OutboundMessage{}, false
}

// ---- Mock LinkEncoder ----

type MockEncoder struct {
	EncodeFunc func(text string) ([]byte, error)
}

var _ adapter.LinkEncoder = (*MockEncoder)(nil)

func (m *MockEncoder) Encode(text string) ([]byte, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(text)
	}
	return []byte("png-bytes"), nil
}

// ---- Mock PaymentGateway ----

type MockGateway struct {
	mu    sync.Mutex
	Calls []string // order ids

	CreatePaymentFunc func(ctx context.Context, amount decimal.Decimal, description, orderID string, customer adapter.CustomerInfo) (string, error)
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) CreatePayment(ctx context.Context, amount decimal.Decimal, description, orderID string, customer adapter.CustomerInfo) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, orderID)
	m.mu.Unlock()
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, amount, description, orderID, customer)
	}
	return "https://checkout.example.com/" + orderID, nil
}

// ---- Shared fixture ----

// engineDeps bundles fresh stores and mocks for one test.
type engineDeps struct {
	sessions   *memstore.SessionRepo
	businesses *memstore.BusinessRepo
	payments   *memstore.PaymentRepo
	chat       *MockChat
	encoder    *MockEncoder
	engine     *usecase.ConversationEngine
}

const testLinkBase = "https://pay.example.com"

func newEngineDeps() *engineDeps {
	d := &engineDeps{
		sessions:   memstore.NewSessionRepo(),
		businesses: memstore.NewBusinessRepo(),
		payments:   memstore.NewPaymentRepo(),
		chat:       &MockChat{},
		encoder:    &MockEncoder{},
	}
	d.engine = usecase.NewConversationEngine(
		d.sessions, d.businesses, d.payments,
		identifier.NewGenerator(), d.chat, d.encoder,
		newTestBundle(), testLinkBase, newTestLogger(),
	)
	return d
}

// registerBusiness walks the full registration flow for chatID in English.
func (d *engineDeps) registerBusiness(ctx context.Context, chatID int64, name, phone string) {
	d.engine.HandleMessage(ctx, chatID, "/start")
	d.engine.HandleMessage(ctx, chatID, "English")
	d.engine.HandleMessage(ctx, chatID, "Register business")
	d.engine.HandleMessage(ctx, chatID, name)
	d.engine.HandleMessage(ctx, chatID, phone)
}

// createPayment walks the payment-creation flow and returns the created
// record (there must be exactly one for chatID).
func (d *engineDeps) createPayment(ctx context.Context, chatID int64, amount, description string) *model.PaymentRecord {
	d.engine.HandleMessage(ctx, chatID, "Create payment link")
	d.engine.HandleMessage(ctx, chatID, amount)
	d.engine.HandleMessage(ctx, chatID, description)
	d.engine.Wait()
	records, err := d.payments.ListByMerchant(ctx, chatID)
	if err != nil || len(records) == 0 {
		return nil
	}
	return records[len(records)-1]
}
