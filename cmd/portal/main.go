package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dbtc-edu/enrollment-portal/internal/handler"
	"github.com/dbtc-edu/enrollment-portal/internal/metrics"
	"github.com/dbtc-edu/enrollment-portal/internal/notify"
	"github.com/dbtc-edu/enrollment-portal/internal/router"
	"github.com/dbtc-edu/enrollment-portal/internal/session"
	"github.com/dbtc-edu/enrollment-portal/internal/upstream"
	"github.com/dbtc-edu/enrollment-portal/pkg/config"
	"github.com/dbtc-edu/enrollment-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	store, err := session.NewRedis(cfg.Redis, cfg.Session.TTL)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}

	mtr := metrics.New()
	api := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logr, mtr)

	codec := session.NewCookieCodec(cfg.Session.CookieSecret, cfg.Session.TTL)
	sessions := session.NewManager(store, api, codec, logr)

	poller := notify.NewService(api, cfg.Notifications.PollInterval, logr)
	sessions.Subscribe(poller)

	deps := router.Deps{
		Config:        cfg,
		Logger:        logr,
		Sessions:      sessions,
		Metrics:       mtr,
		Auth:          handler.NewAuthHandler(api, sessions, cfg.Session.CookieName, int(cfg.Session.TTL.Seconds()), cfg.Session.Secure, logr),
		Student:       handler.NewStudentHandler(api, store, logr),
		Admin:         handler.NewAdminHandler(api, logr),
		Registrar:     handler.NewRegistrarHandler(api, logr),
		Notifications: handler.NewNotificationHandler(poller, logr),
		Address:       handler.NewAddressHandler(api),
		Unread:        poller,
	}
	r := router.New(deps)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("portal starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown failed", zap.Error(err))
	}
	poller.Shutdown()
}
