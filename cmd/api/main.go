package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/metrics"
	"github.com/jwebster45206/quest-engine/internal/middleware"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/internal/services/queue"
	"github.com/jwebster45206/quest-engine/internal/session"
	"github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	sessionID := uuid.New()
	if cfg.SessionID != "" {
		sessionID, err = uuid.Parse(cfg.SessionID)
		if err != nil {
			log.Error("Invalid SESSION_ID", "session_id", cfg.SessionID, "error", err)
			os.Exit(1)
		}
	}

	log.Info("Starting Quest Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"scene", cfg.Scene,
		"session_id", sessionID.String())

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log).
		WithProgressTTL(cfg.ProgressTTL)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	m := metrics.New()
	broadcaster := events.NewBroadcaster(store.Client(), log)
	sess, err := session.Open(storageCtx, store, cfg.Scene, sessionID, session.Options{
		Notifier: m.Notifier(broadcaster.ForSession(sessionID)),
	}, logger.WithSession(log, sessionID.String()))
	if err != nil {
		log.Error("Failed to open session", "error", err)
		os.Exit(1)
	}

	inbox := queue.NewEventQueue(store.Client(), log)
	inboxWorker := worker.New(inbox, sessionID, sess, log, "").WithMetrics(m)
	go func() {
		if err := inboxWorker.Start(); err != nil {
			log.Error("Event worker stopped", "error", err)
		}
	}()

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log).
		WithCheck("scene", func(context.Context) error {
			if sess.Status().Story == "" {
				return fmt.Errorf("scene %q has no story loaded", cfg.Scene)
			}
			return nil
		}))

	questHandler := handlers.NewQuestHandler(sess, log)
	mux.Handle("/v1/quests", questHandler)
	mux.Handle("/v1/quests/", questHandler)

	mux.Handle("/v1/events", handlers.NewEventsHandler(sess, log).
		WithQueue(inbox).
		WithMetrics(m))
	mux.Handle("/v1/status", handlers.NewStatusHandler(sess, log))
	mux.Handle("/v1/save", handlers.NewSaveHandler(sess, log))

	messageHandler := handlers.NewMessageHandler(sess, log)
	mux.Handle("/v1/messages", messageHandler)
	mux.Handle("/v1/messages/", messageHandler)

	mux.Handle("/v1/stream", handlers.NewStreamHandler(store.Client(), sessionID, log))
	mux.Handle("/v1/ws", handlers.NewSocketHandler(store.Client(), sess, log).WithMetrics(m))
	mux.Handle("/metrics", m.Handler())

	handler := middleware.Logger(log, middleware.Metrics(m, mux))
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout removed to enable streaming - streaming endpoints handle their own timeouts
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")
	inboxWorker.Stop()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Close storage connection
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
