package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"chatrelay/internal/chat"
	"chatrelay/internal/config"
	"chatrelay/internal/handlers"
	"chatrelay/internal/jobs"
	"chatrelay/internal/llm"
	_ "chatrelay/internal/llm/gemini"
	"chatrelay/internal/presence"
	"chatrelay/internal/prompts"
	"chatrelay/internal/routers"
	"chatrelay/internal/utils"
)

var (
	listenAndServe = http.ListenAndServe
	exitFunc       = func(err error) {
		zap.L().Fatal("server exited", zap.Error(err))
	}
)

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}

func run(_ context.Context) error {
	logger := utils.NewLogger()
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	registry := chat.NewRegistry()

	// AI relay is secondary: a missing API key disables it instead of
	// blocking the whole relay.
	var responder chat.AIResponder
	if provider, err := llm.NewProvider(cfg.Provider); err != nil {
		logger.Warn("AI responder disabled", zap.Error(err))
	} else {
		pm, err := prompts.NewManager()
		if err != nil {
			return err
		}
		responder = llm.NewResponder(provider, pm)
		logger.Info("AI responder enabled", zap.String("provider", provider.GetProviderName()))
	}

	var publisher chat.PresencePublisher
	if cfg.RedisAddr != "" {
		p := presence.NewPublisher(logger, cfg.RedisAddr)
		defer func() { _ = p.Close() }()
		publisher = p
		logger.Info("presence publisher enabled", zap.String("redis", cfg.RedisAddr))
	}

	coordinator := chat.NewCoordinator(logger, registry, responder, publisher, cfg.AITimeout)

	reporter := jobs.NewStatsReporter(logger, registry)
	if err := reporter.Start(); err != nil {
		return err
	}
	defer reporter.Stop()

	h := handlers.NewHandlers(logger, coordinator)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	r.Mount("/", routers.New(h, cfg.CORSAllow))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	addr := ":" + cfg.Port
	logger.Info("chatrelay listening", zap.String("addr", addr))
	return listenAndServe(addr, r)
}
