package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"telegram-merchant-pay/internal/domain"
	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/adapter"
	"telegram-merchant-pay/internal/domain/ports/repository"
	"telegram-merchant-pay/internal/identifier"
	"telegram-merchant-pay/internal/infra/i18n"
	"telegram-merchant-pay/internal/infra/logging"
	"telegram-merchant-pay/internal/infra/metrics"
	"telegram-merchant-pay/internal/validate"
)

// session buffer keys
const (
	dataBusinessName = "business_name"
	dataAmount       = "amount"
)

// startCommand re-enters language selection at any point.
const startCommand = "/start"

// ConversationEngine drives the per-merchant guided dialogue. All replies go
// out through the chat transport; every inbound message is handled under a
// per-chat lock.
type ConversationEngine struct {
	sessions   repository.SessionRepository
	businesses repository.BusinessRepository
	payments   repository.PaymentRepository
	ids        *identifier.Generator
	chat       adapter.ChatTransport
	encoder    adapter.LinkEncoder
	bundle     *i18n.Bundle
	linkBase   string
	log        *zerolog.Logger

	locks *chatLocks
	// async tracks fire-and-forget deliveries so tests can drain them.
	async sync.WaitGroup
}

func NewConversationEngine(
	sessions repository.SessionRepository,
	businesses repository.BusinessRepository,
	payments repository.PaymentRepository,
	ids *identifier.Generator,
	chat adapter.ChatTransport,
	encoder adapter.LinkEncoder,
	bundle *i18n.Bundle,
	linkBase string,
	logger *zerolog.Logger,
) *ConversationEngine {
	return &ConversationEngine{
		sessions:   sessions,
		businesses: businesses,
		payments:   payments,
		ids:        ids,
		chat:       chat,
		encoder:    encoder,
		bundle:     bundle,
		linkBase:   strings.TrimRight(linkBase, "/"),
		log:        logger,
		locks:      newChatLocks(),
	}
}

// Wait blocks until all in-flight async deliveries finish. Test helper.
func (e *ConversationEngine) Wait() { e.async.Wait() }

// HandleMessage processes one inbound text event for chatID. Unexpected
// internal failures are caught here, logged, and turned into a generic
// localized reply that hands the merchant back to the main menu.
func (e *ConversationEngine) HandleMessage(ctx context.Context, chatID int64, text string) {
	unlock := e.locks.lock(chatID)
	defer unlock()

	ctx = logging.WithChatID(ctx, chatID)
	log := logging.With(ctx, e.log)

	sess, err := e.sessions.Get(ctx, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		sess = model.NewSession(chatID)
	} else if err != nil {
		log.Error().Err(err).Msg("load session")
		e.send(ctx, adapter.OutboundMessage{ChatID: chatID, Text: e.bundle.For("").T("err_generic")})
		return
	}
	sess.Touch()
	metrics.IncConversationMessage(string(sess.Step))

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("step", string(sess.Step)).Msg("conversation handler panicked")
			e.recoverToMenu(ctx, sess)
		}
	}()

	if err := e.dispatch(ctx, sess, text); err != nil {
		log.Error().Err(err).Str("step", string(sess.Step)).Msg("conversation step failed")
		e.recoverToMenu(ctx, sess)
	}
}

// recoverToMenu returns the session to idle and tells the merchant to retry.
func (e *ConversationEngine) recoverToMenu(ctx context.Context, sess *model.Session) {
	tr := e.bundle.For(sess.Lang)
	sess.Reset()
	if err := e.sessions.Set(ctx, sess); err != nil {
		logging.With(ctx, e.log).Error().Err(err).Msg("reset session")
	}
	e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("err_generic"), ReplyButtons: e.menuButtons(tr)})
}

func (e *ConversationEngine) dispatch(ctx context.Context, sess *model.Session, text string) error {
	text = strings.TrimSpace(text)

	if text == startCommand {
		sess.Step = model.StepAwaitingLanguage
		sess.Data = map[string]string{}
		if err := e.sessions.Set(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, adapter.OutboundMessage{
			ChatID:       sess.ChatID,
			Text:         e.bundle.For(i18n.LangEnglish).T("choose_language"),
			ReplyButtons: e.languageButtons(),
		})
		return nil
	}

	switch sess.Step {
	case model.StepAwaitingLanguage:
		return e.handleLanguage(ctx, sess, text)
	case model.StepIdle:
		return e.handleMenu(ctx, sess, text)
	case model.StepAwaitingBusinessName:
		return e.handleBusinessName(ctx, sess, text)
	case model.StepAwaitingPhone:
		return e.handleBusinessPhone(ctx, sess, text)
	case model.StepAwaitingAmount:
		return e.handleAmount(ctx, sess, text)
	case model.StepAwaitingDescription:
		return e.handleDescription(ctx, sess, text)
	default:
		// Unknown persisted step; hand control back to the menu.
		sess.Reset()
		if err := e.sessions.Set(ctx, sess); err != nil {
			return err
		}
		tr := e.bundle.For(sess.Lang)
		e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("welcome"), ReplyButtons: e.menuButtons(tr)})
		return nil
	}
}

func (e *ConversationEngine) handleLanguage(ctx context.Context, sess *model.Session, text string) error {
	var selected string
	for _, lang := range []string{i18n.LangEnglish, i18n.LangArabic} {
		if text == e.bundle.For(lang).T("lang_button") {
			selected = lang
			break
		}
	}
	if selected == "" {
		// Anything else is ignored; the merchant stays on language selection.
		// Persist the session so first contact is not lost.
		return e.sessions.Set(ctx, sess)
	}

	sess.Lang = selected
	sess.Reset()
	if err := e.sessions.Set(ctx, sess); err != nil {
		return err
	}
	tr := e.bundle.For(selected)
	e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("welcome"), ReplyButtons: e.menuButtons(tr)})
	return nil
}

// handleMenu recognizes the four triggers against the ACTIVE locale's labels
// only. A label typed in the other locale is deliberately not recognized.
func (e *ConversationEngine) handleMenu(ctx context.Context, sess *model.Session, text string) error {
	tr := e.bundle.For(sess.Lang)
	switch text {
	case tr.T("menu_register"):
		sess.Step = model.StepAwaitingBusinessName
		if err := e.sessions.Set(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("ask_business_name")})
		return nil

	case tr.T("menu_create_payment"):
		if _, err := e.businesses.FindByMerchant(ctx, sess.ChatID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				if err := e.sessions.Set(ctx, sess); err != nil {
					return err
				}
				e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("register_first"), ReplyButtons: e.menuButtons(tr)})
				return nil
			}
			return err
		}
		sess.Step = model.StepAwaitingAmount
		if err := e.sessions.Set(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("ask_amount")})
		return nil

	case tr.T("menu_dashboard"):
		return e.handleDashboard(ctx, sess, tr)

	case tr.T("menu_help"):
		if err := e.sessions.Set(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("help"), ReplyButtons: e.menuButtons(tr)})
		return nil

	default:
		if err := e.sessions.Set(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("welcome"), ReplyButtons: e.menuButtons(tr)})
		return nil
	}
}

func (e *ConversationEngine) handleBusinessName(ctx context.Context, sess *model.Session, text string) error {
	tr := e.bundle.For(sess.Lang)
	if !validate.BusinessName(text) {
		if err := e.sessions.Set(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("err_name")})
		return nil
	}
	sess.Data[dataBusinessName] = strings.TrimSpace(text)
	sess.Step = model.StepAwaitingPhone
	if err := e.sessions.Set(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("ask_business_phone")})
	return nil
}

func (e *ConversationEngine) handleBusinessPhone(ctx context.Context, sess *model.Session, text string) error {
	tr := e.bundle.For(sess.Lang)
	phone := strings.TrimSpace(text)
	if !validate.Phone(phone) {
		if err := e.sessions.Set(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("err_phone")})
		return nil
	}

	name := sess.Data[dataBusinessName]
	b, err := model.NewBusiness(sess.ChatID, name, phone)
	if err != nil {
		return fmt.Errorf("build business profile: %w", err)
	}
	if err := e.businesses.Save(ctx, b); err != nil {
		return fmt.Errorf("save business profile: %w", err)
	}

	sess.Reset()
	if err := e.sessions.Set(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, adapter.OutboundMessage{
		ChatID:       sess.ChatID,
		Text:         tr.T("business_registered", b.Name, b.Phone),
		ReplyButtons: e.menuButtons(tr),
	})
	return nil
}

func (e *ConversationEngine) handleAmount(ctx context.Context, sess *model.Session, text string) error {
	tr := e.bundle.For(sess.Lang)
	amount, ok := validate.Amount(text)
	if !ok {
		if err := e.sessions.Set(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("err_amount")})
		return nil
	}
	sess.Data[dataAmount] = amount.String()
	sess.Step = model.StepAwaitingDescription
	if err := e.sessions.Set(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("ask_description")})
	return nil
}

func (e *ConversationEngine) handleDescription(ctx context.Context, sess *model.Session, text string) error {
	tr := e.bundle.For(sess.Lang)
	description := strings.TrimSpace(text)
	if description == "" {
		if err := e.sessions.Set(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("ask_description")})
		return nil
	}

	amount, err := decimal.NewFromString(sess.Data[dataAmount])
	if err != nil {
		return fmt.Errorf("buffered amount corrupt: %w", err)
	}

	id := e.ids.NewPaymentID()
	rec, err := model.NewPaymentRecord(id, sess.ChatID, amount, description)
	if err != nil {
		return fmt.Errorf("build payment record: %w", err)
	}
	if err := e.payments.Save(ctx, rec); err != nil {
		return fmt.Errorf("save payment record: %w", err)
	}
	metrics.IncPayment(string(model.PaymentStatusPending))

	sess.Reset()
	if err := e.sessions.Set(ctx, sess); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/pay/%s", e.linkBase, id)
	chatID, lang := sess.ChatID, sess.Lang
	e.async.Add(1)
	go func() {
		defer e.async.Done()
		e.deliverPaymentLink(context.WithoutCancel(ctx), chatID, lang, amount, link)
	}()
	return nil
}

// deliverPaymentLink sends the shareable link, with a QR image when the
// encoder cooperates and text-only otherwise. Encoder failure never reaches
// the merchant as an error.
func (e *ConversationEngine) deliverPaymentLink(ctx context.Context, chatID int64, lang string, amount decimal.Decimal, link string) {
	tr := e.bundle.For(lang)
	msg := adapter.OutboundMessage{
		ChatID:       chatID,
		Text:         tr.T("payment_created", amount.String(), link),
		ReplyButtons: e.menuButtons(tr),
	}
	if png, err := e.encoder.Encode(link); err != nil {
		logging.With(ctx, e.log).Warn().Err(err).Msg("link encoder failed, sending text-only")
	} else {
		msg.Photo = png
		msg.PhotoCaption = tr.T("payment_link_caption", amount.String())
	}
	e.send(ctx, msg)
}

// handleDashboard computes ledger-derived totals for this merchant. Note the
// "today" figure sums completed records CREATED today, while the profile's
// TxCount is maintained by the settlement path; the two are decoupled.
func (e *ConversationEngine) handleDashboard(ctx context.Context, sess *model.Session, tr *i18n.Translator) error {
	b, err := e.businesses.FindByMerchant(ctx, sess.ChatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := e.sessions.Set(ctx, sess); err != nil {
				return err
			}
			e.send(ctx, adapter.OutboundMessage{ChatID: sess.ChatID, Text: tr.T("register_first"), ReplyButtons: e.menuButtons(tr)})
			return nil
		}
		return err
	}

	records, err := e.payments.ListByMerchant(ctx, sess.ChatID)
	if err != nil {
		return fmt.Errorf("list merchant payments: %w", err)
	}

	allTime := decimal.Zero
	today := decimal.Zero
	var pending int64
	y, m, d := time.Now().Date()
	for _, p := range records {
		switch p.Status {
		case model.PaymentStatusCompleted:
			allTime = allTime.Add(p.Amount)
			py, pm, pd := p.CreatedAt.Date()
			if py == y && pm == m && pd == d {
				today = today.Add(p.Amount)
			}
		case model.PaymentStatusPending:
			pending++
		}
	}

	if err := e.sessions.Set(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, adapter.OutboundMessage{
		ChatID:       sess.ChatID,
		Text:         tr.T("dashboard", b.Name, allTime.String(), today.String(), b.TxCount, pending),
		ReplyButtons: e.menuButtons(tr),
	})
	return nil
}

func (e *ConversationEngine) send(ctx context.Context, msg adapter.OutboundMessage) {
	if err := e.chat.Send(ctx, msg); err != nil {
		logging.With(ctx, e.log).Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("outbound delivery failed")
	}
}

func (e *ConversationEngine) menuButtons(tr *i18n.Translator) [][]string {
	return [][]string{
		{tr.T("menu_register"), tr.T("menu_create_payment")},
		{tr.T("menu_dashboard"), tr.T("menu_help")},
	}
}

func (e *ConversationEngine) languageButtons() [][]string {
	return [][]string{{
		e.bundle.For(i18n.LangEnglish).T("lang_button"),
		e.bundle.For(i18n.LangArabic).T("lang_button"),
	}}
}
