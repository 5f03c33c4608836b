package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-merchant-pay/internal/config"
	"telegram-merchant-pay/internal/domain/ports/repository"
	"telegram-merchant-pay/internal/identifier"
	pg "telegram-merchant-pay/internal/infra/db/postgres"
	"telegram-merchant-pay/internal/infra/i18n"
	"telegram-merchant-pay/internal/infra/logging"
	"telegram-merchant-pay/internal/infra/memstore"
	"telegram-merchant-pay/internal/infra/metrics"
	payg "telegram-merchant-pay/internal/infra/payment"
	"telegram-merchant-pay/internal/infra/qr"
	red "telegram-merchant-pay/internal/infra/redis"
	tele "telegram-merchant-pay/internal/infra/telegram"
	"telegram-merchant-pay/internal/infra/web"
	"telegram-merchant-pay/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}
	metrics.MustRegister()

	// ---- Stores: Postgres when configured, process memory otherwise ----
	var (
		payments   repository.PaymentRepository
		businesses repository.BusinessRepository
	)
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connect")
		}
		defer pool.Close()
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("postgres schema")
		}
		payments = pg.NewPaymentRepo(pool)
		businesses = pg.NewBusinessRepo(pool)
		logger.Info().Msg("using postgres ledger and registry")
	} else {
		payments = memstore.NewPaymentRepo()
		businesses = memstore.NewBusinessRepo()
		logger.Info().Msg("using in-memory ledger and registry")
	}

	// ---- Sessions: Redis when configured ----
	var sessions repository.SessionRepository
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect")
		}
		defer redisClient.Close()
		sessions = red.NewSessionRepo(redisClient, cfg.Redis.TTL)
		logger.Info().Msg("using redis session store")
	} else {
		sessions = memstore.NewSessionRepo()
	}

	// ---- Locales ----
	bundle, err := i18n.NewBundle(i18n.LocalesFS)
	if err != nil {
		logger.Fatal().Err(err).Msg("load locales")
	}

	// ---- Adapters ----
	gateway := payg.NewCheckoutGateway(cfg.Payment.Gateway.APIKey, cfg.Payment.Gateway.BaseURL, cfg.Payment.Gateway.CallbackURL)
	encoder := qr.NewEncoder()
	ids := identifier.NewGenerator()

	// ---- Use cases ----
	// The engine and the bot depend on each other (engine sends through the
	// bot, the bot dispatches inbound messages to the engine), so the bot is
	// constructed against the engine and the engine against the bot through
	// a late-bound transport.
	transport := &lateBoundTransport{}
	engine := usecase.NewConversationEngine(sessions, businesses, payments, ids, transport, encoder, bundle, cfg.Payment.LinkBaseURL, logger)
	settlement := usecase.NewSettlementHandler(payments, businesses, sessions, transport, bundle, logger)
	links := usecase.NewLinkResolver(payments, businesses, gateway, logger)
	stats := usecase.NewStatsUseCase(businesses, payments, logger)

	// ---- Telegram ----
	bot, err := tele.NewRealBot(&cfg.Bot, engine, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	transport.bind(bot)
	go func() {
		if err := bot.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- HTTP server ----
	server := web.NewServer(cfg, links, settlement, stats, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	bot.StopPolling()
}
