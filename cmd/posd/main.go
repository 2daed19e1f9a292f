package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/config"
	"restaurant-pos-backend/internal/app"
	"restaurant-pos-backend/internal/notification"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded environment from .env")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warnf("no configuration at %s, using defaults", configPath)
		cfg = config.Default()
	} else if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	configureLogger(logger, cfg.Log)
	log := logger.WithField("service", "posd")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()
	log.WithField("driver", cfg.Store.Driver).Info("data store initialized")

	a := app.New(cfg, s, log)
	if err := a.Seed(ctx); err != nil {
		log.Fatalf("failed to seed data: %v", err)
	}

	if a.Limiter != nil {
		go a.Limiter.PruneEvery(ctx, time.Minute, 10*time.Minute)
	}

	var pool *notification.WorkerPool
	if cfg.Events.NATSURL != "" {
		sender, err := notification.NewNATSSender(cfg.Events.NATSURL)
		if err != nil {
			log.Fatalf("failed to start event forwarding: %v", err)
		}
		defer sender.Close()
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, sender, cfg.Events.SubjectPrefix, log)
		pool.Start(ctx)
		detach := pool.Attach(a.Bus)
		defer detach()
		log.WithField("url", cfg.Events.NATSURL).Info("forwarding events to NATS")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown")
	}
	cancel()
	if pool != nil {
		pool.Wait()
		if n := pool.Dropped(); n > 0 {
			log.WithField("dropped", n).Warn("events dropped while forwarding")
		}
	}
	log.Info("server gracefully stopped")
}

func configureLogger(logger *logrus.Logger, cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithError(err).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}
