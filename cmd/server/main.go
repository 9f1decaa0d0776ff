package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jairsl2206/restaurant-sub000/internal/config"
	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/logger"
	"github.com/jairsl2206/restaurant-sub000/internal/notify"
	"github.com/jairsl2206/restaurant-sub000/internal/router"
)

const notifyTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()
	log := logger.L()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("load timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal("unable to ping database", zap.Error(err))
	}
	log.Info("connected to database")

	notifier, closeNotifier := buildNotifier(cfg, log)
	defer closeNotifier()
	dispatcher := notify.NewDispatcher(notifier, notifyTimeout)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, database.New(pool), pool, dispatcher, loc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// let queued notifications finish before the publishers close
	dispatcher.Wait()
	log.Info("server stopped")
}

// buildNotifier combines the configured notification channels. With none
// configured, notifications are dropped.
func buildNotifier(cfg *config.Config, log *zap.Logger) (notify.Notifier, func()) {
	var (
		channels notify.Multi
		closers  []func()
	)

	if cfg.WhatsAppAPIURL != "" {
		client := &http.Client{Timeout: notifyTimeout}
		channels = append(channels, notify.NewWhatsApp(cfg.WhatsAppAPIURL, cfg.WhatsAppAPIToken, client))
		log.Info("whatsapp notifications enabled")
	}

	if cfg.AMQPURL != "" {
		pub, err := notify.DialAMQP(cfg.AMQPURL, cfg.NotifyQueue)
		if err != nil {
			log.Error("amqp notifications disabled", zap.Error(err))
		} else {
			channels = append(channels, pub)
			closers = append(closers, func() { _ = pub.Close() })
			log.Info("amqp notifications enabled", zap.String("queue", cfg.NotifyQueue))
		}
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(channels) == 0 {
		log.Warn("no notification channel configured")
		return notify.Noop{}, closeAll
	}
	return channels, closeAll
}
