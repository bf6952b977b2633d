// Package main is the entry point for the relay server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gptyar/telegram-relay/internal/config"
	"github.com/gptyar/telegram-relay/internal/handler"
	"github.com/gptyar/telegram-relay/internal/llm"
	"github.com/gptyar/telegram-relay/internal/middleware"
	_ "github.com/gptyar/telegram-relay/internal/nats"
	"github.com/gptyar/telegram-relay/internal/router"
	"github.com/gptyar/telegram-relay/internal/service"
	"github.com/gptyar/telegram-relay/internal/store"
	_ "github.com/gptyar/telegram-relay/internal/store/bolt"
	_ "github.com/gptyar/telegram-relay/internal/store/sqlite"
	"github.com/gptyar/telegram-relay/internal/telegram"
	"github.com/gptyar/telegram-relay/pkg/logger"
	"github.com/gptyar/telegram-relay/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "optional config file (yaml, json or toml)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewFromEnv(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetGlobal(log)

	if err := run(cfg, log); err != nil {
		log.Error("relay stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("starting relay",
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("inference_provider", cfg.InferenceProvider),
	)

	ctx := context.Background()

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "telegram-relay", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer func() { _ = tracing.Shutdown(context.Background(), tp) }()
		}
	}

	// Open session store
	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	sessions, err := store.Open(openCtx, cfg.StoreBackend, cfg.StoreOptions(log))
	cancel()
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Warn("closing store", zap.Error(err))
		}
	}()

	// Initialize inference gateway
	gateway, err := llm.NewGateway(llm.Provider(cfg.InferenceProvider), llm.Options{
		APIKey:    cfg.InferenceAPIKey,
		BaseURL:   cfg.InferenceBaseURL,
		MaxTokens: cfg.InferenceMaxTokens,
	})
	if err != nil {
		return fmt.Errorf("creating inference gateway: %w", err)
	}

	tg := telegram.NewClient(cfg.TelegramAPIBase, cfg.TelegramBotToken, cfg.TelegramTimeout)
	if cfg.TelegramBotToken == "" {
		log.Warn("TELEGRAM_BOT_TOKEN not set; webhook registration and replies will fail")
	}

	// Initialize services
	relaySvc := service.NewRelayService(sessions, gateway, tg, service.RelayConfig{
		Model:            cfg.InferenceModel,
		SystemPrompt:     cfg.SystemPrompt,
		HistoryCap:       cfg.HistoryCap,
		FallbackReply:    cfg.FallbackReply,
		InferenceTimeout: cfg.InferenceTimeout,
	}, log)
	webhookSvc := service.NewWebhookService(tg, service.WebhookConfig{
		BotToken:  cfg.TelegramBotToken,
		Secret:    cfg.TelegramWebhookSecret,
		PublicURL: cfg.PublicURL,
	}, log)

	// Public listener: exactly the webhook surface
	public := chi.Chain(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		middleware.Logging(log),
		chimiddleware.Recoverer,
		middleware.SecretToken(cfg.TelegramWebhookSecret),
		middleware.ChatRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow),
	).Handler(router.New(
		handler.NewWebhookHandler(webhookSvc, log),
		handler.NewMessageHandler(relaySvc, log),
	))

	// Admin listener: health and metrics
	healthHandler := handler.NewHealthHandler(sessions)
	admin := chi.NewRouter()
	admin.Use(chimiddleware.Recoverer)
	admin.Get("/health", healthHandler.Health)
	admin.Get("/ready", healthHandler.Ready)
	admin.Handle("/metrics", promhttp.Handler())

	servers := []*http.Server{
		{
			Addr:         ":" + cfg.Port,
			Handler:      public,
			ReadTimeout:  cfg.ServerReadTimeout,
			WriteTimeout: cfg.ServerWriteTimeout,
			IdleTimeout:  120 * time.Second,
		},
		{
			Addr:         ":" + cfg.AdminPort,
			Handler:      admin,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Info("server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listener %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	// Wait for shutdown signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	case runErr = <-errCh:
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server forced to shutdown", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}

	log.Info("server stopped")
	return runErr
}
