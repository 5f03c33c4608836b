package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-merchant-pay/internal/config"
	"telegram-merchant-pay/internal/domain/ports/adapter"
)

// MessageHandler receives one inbound text event. The conversation engine
// implements this.
type MessageHandler interface {
	HandleMessage(ctx context.Context, chatID int64, text string)
}

// RealBot implements adapter.ChatTransport over tgbotapi with concurrent
// polling workers.
type RealBot struct {
	bot     *tgbotapi.BotAPI
	cfg     *config.BotConfig
	handler MessageHandler
	log     *zerolog.Logger

	// updateWorkers is how many goroutines will concurrently process updates.
	updateWorkers int
	cancelPolling context.CancelFunc
}

var _ adapter.ChatTransport = (*RealBot)(nil)

func NewRealBot(cfg *config.BotConfig, handler MessageHandler, logger *zerolog.Logger) (*RealBot, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if handler == nil {
		return nil, errors.New("message handler is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &RealBot{
		bot:           bot,
		cfg:           cfg,
		handler:       handler,
		log:           logger,
		updateWorkers: workers,
	}, nil
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealBot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					r.handleUpdate(ctx, update)
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	// Dispatcher goroutine: feed updates into updateChan
	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	r.bot.StopReceivingUpdates()
	wg.Wait()
	return nil
}

// StopPolling stops the polling loop gracefully.
func (r *RealBot) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealBot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	r.handler.HandleMessage(ctx, update.Message.Chat.ID, update.Message.Text)
}

// Send delivers one outbound message; a photo is sent with the text as its
// caption, a plain message otherwise.
func (r *RealBot) Send(ctx context.Context, msg adapter.OutboundMessage) error {
	var keyboard interface{}
	if len(msg.ReplyButtons) > 0 {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(msg.ReplyButtons))
		for _, labels := range msg.ReplyButtons {
			row := make([]tgbotapi.KeyboardButton, 0, len(labels))
			for _, label := range labels {
				row = append(row, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, row)
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.ResizeKeyboard = true
		keyboard = kb
	}

	if len(msg.Photo) > 0 {
		photo := tgbotapi.NewPhoto(msg.ChatID, tgbotapi.FileBytes{Name: "payment-link.png", Bytes: msg.Photo})
		photo.Caption = msg.PhotoCaption
		if _, err := r.bot.Send(photo); err != nil {
			return err
		}
	}

	m := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	if keyboard != nil {
		m.ReplyMarkup = keyboard
	}
	_, err := r.bot.Send(m)
	return err
}
