package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-merchant-pay/internal/config"
	"telegram-merchant-pay/internal/usecase"
)

// Server is the public HTTP surface: payment links, the gateway webhook,
// health, metrics and the admin stats API.
type Server struct {
	links      *usecase.LinkResolver
	settlement *usecase.SettlementHandler
	stats      *usecase.StatsUseCase
	auth       *AuthManager
	adminKey   string
	log        *zerolog.Logger

	httpServer *http.Server
}

func NewServer(
	cfg *config.Config,
	links *usecase.LinkResolver,
	settlement *usecase.SettlementHandler,
	stats *usecase.StatsUseCase,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		links:      links,
		settlement: settlement,
		stats:      stats,
		auth:       NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL),
		adminKey:   cfg.Admin.Secret,
		log:        logger,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/pay/{paymentID}", s.handleLinkVisit)
	r.Post("/webhook/payment", s.handleSettlementWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/admin/login", s.handleAdminLogin)
		r.With(s.auth.Guard).Get("/stats", s.handleStats)
	})

	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
