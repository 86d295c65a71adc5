package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/chandrakumar-sys/bank-support-bot/internal/ai"
	"github.com/chandrakumar-sys/bank-support-bot/internal/bot"
	"github.com/chandrakumar-sys/bank-support-bot/internal/config"
	"github.com/chandrakumar-sys/bank-support-bot/internal/dataset"
	"github.com/chandrakumar-sys/bank-support-bot/internal/glpi"
	"github.com/chandrakumar-sys/bank-support-bot/internal/mail"
	"github.com/chandrakumar-sys/bank-support-bot/internal/observability"
	"github.com/chandrakumar-sys/bank-support-bot/internal/session"
	"github.com/chandrakumar-sys/bank-support-bot/internal/store"
	"github.com/chandrakumar-sys/bank-support-bot/internal/ticket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := store.NewBoltStore(cfg.Ops.DataDir + "/bankbot.db")
	if err != nil {
		logger.Fatal("store", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("loading datasets")
	loader, err := dataset.NewLoader(ctx, cfg.Dataset)
	if err != nil {
		logger.Fatal("dataset loader", zap.Error(err))
	}
	tables, err := loader.Load(ctx)
	if err != nil {
		logger.Fatal("loading datasets", zap.Error(err))
	}
	logger.Info("datasets loaded")

	metrics := observability.NewMetrics()
	helpdesk := glpi.NewClient(cfg.GLPI.BaseURL, cfg.GLPI.AppToken, cfg.GLPI.UserToken)
	orchestrator := ticket.NewOrchestrator(helpdesk, db, ticket.DefaultDetector(), metrics, logger)

	locks := session.NewManager()
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				locks.Cleanup(1 * time.Hour)
			}
		}
	}()

	replier := ai.NewReplier(cfg.LLM, tables, logger)
	handler := bot.NewHandler(replier, mail.NewSender(cfg.Mail), orchestrator, locks, metrics, logger)
	poller := bot.NewPoller(mail.NewFetcher(cfg.Mail), handler, cfg.Mail.PollInterval, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(metrics.Snapshot())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Ops.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("ops server listening", zap.String("port", cfg.Ops.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ops server", zap.Error(err))
		}
	}()

	logger.Info("bankbot: waiting for emails", zap.Duration("poll_interval", cfg.Mail.PollInterval))
	go poller.Run(ctx)

	<-ctx.Done()
	logger.Info("bankbot: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("bankbot: stopped")
}
