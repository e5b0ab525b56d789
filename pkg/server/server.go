package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dareleague/registration/internal/admin"
	"github.com/dareleague/registration/internal/auth"
	"github.com/dareleague/registration/internal/config"
	"github.com/dareleague/registration/internal/mail"
	"github.com/dareleague/registration/internal/pricing"
	"github.com/dareleague/registration/internal/registration"
	"github.com/dareleague/registration/internal/slots"
	"github.com/dareleague/registration/internal/store"
	"github.com/dareleague/registration/pkg/metrics"
	"github.com/dareleague/registration/pkg/storage"
	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Server struct {
	ctx    context.Context
	logger *zap.Logger
	mux    *chi.Mux
	pool   *pgxpool.Pool
	serv   *http.Server
	cfg    *config.Entity
}

func NewServer(ctx context.Context, logger *zap.Logger, mux *chi.Mux, pool *pgxpool.Pool, conf *config.Entity) *Server {
	return &Server{ctx: ctx, logger: logger, mux: mux, pool: pool, cfg: conf}
}

func (s *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	s.mux.ServeHTTP(writer, request)
}

// Init wires every component and mounts the routers. The background loops it
// starts stop when the server context is cancelled.
func (s *Server) Init(atom zap.AtomicLevel, reg *prometheus.Registry) error {
	db := store.NewPostgres(s.pool, s.logger)

	proofs, err := storage.NewFS(s.cfg.Storage.Root, s.logger)
	if err != nil {
		return fmt.Errorf("Init failed: %w", err)
	}
	signer := storage.NewSigner(s.cfg.Storage.SignSecret, s.cfg.Storage.BaseURL)

	resolver := pricing.NewResolver(s.logger, pricing.Tiers(),
		time.Duration(s.cfg.App.PriceRefreshSeconds)*time.Second)
	go resolver.Run(s.ctx)

	counter := slots.NewCounter(s.logger, db,
		time.Duration(s.cfg.App.SlotRefreshSeconds)*time.Second, reg)
	go counter.Run(s.ctx)

	var notifier admin.Notifier
	if s.cfg.Mail.Enabled {
		n, err := mail.NewNotifier(s.logger, s.cfg.Mail)
		if err != nil {
			return fmt.Errorf("Init failed: %w", err)
		}
		notifier = n
	}

	regSvc := registration.NewService(s.logger, db, proofs, counter, resolver,
		s.cfg.Event.MaxSlots, s.cfg.Event.Year)
	adminSvc := admin.NewService(s.logger, db, proofs, signer, notifier,
		time.Duration(s.cfg.Storage.SignTTLSeconds)*time.Second, s.cfg.Event.MaxSlots)
	gate := auth.NewGate(s.logger, s.cfg.Admin.PasswordHash, s.cfg.Admin.JWTSecret,
		time.Duration(s.cfg.Admin.TokenTTLHours)*time.Hour)

	httpMetrics := metrics.NewHTTP(reg)

	s.mux.With(httpMetrics.Middleware, s.recoverer).
		Mount("/api/registrations", registration.NewHandler(s.logger, regSvc).Routes())
	s.mux.With(httpMetrics.Middleware, s.recoverer).
		Post("/api/admin/login", gate.LoginHandler)
	s.mux.With(httpMetrics.Middleware, gate.Middleware, s.recoverer).
		Mount("/api/admin/registrations", admin.NewHandler(s.logger, adminSvc).Routes())
	s.mux.Mount("/files", storage.NewHandler(proofs, signer, s.logger).Routes())

	s.mux.Get("/internal/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.pool.Ping(r.Context()); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("OK"))
	})
	s.mux.Handle("/internal/metrics", httpMetrics.Handler())
	s.mux.Handle("/internal/loglevel", atom)

	// Refresh intervals are hot-reloadable without a restart.
	viper.OnConfigChange(func(e fsnotify.Event) {
		s.logger.Info(fmt.Sprintf("Config file changed: %s", e.Name))
		counter.SetInterval(time.Duration(viper.GetInt(config.APP_SLOT_REFRESH_SECONDS)) * time.Second)
	})
	viper.WatchConfig()

	return nil
}

func (s *Server) Start(addr string) error {
	s.serv = &http.Server{
		Addr:    addr,
		Handler: s,
	}

	s.logger.Info("Service successfully started")
	return s.serv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.serv == nil {
		return nil
	}
	return s.serv.Shutdown(ctx)
}

func (s *Server) recoverer(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				writer.WriteHeader(http.StatusInternalServerError)
				writer.Write([]byte("Something going wrong..."))
				s.logger.Error("panic occurred", zap.Any("panic", err))
			}
		}()
		handler.ServeHTTP(writer, request)
	})
}
