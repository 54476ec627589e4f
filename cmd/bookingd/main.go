package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpAdapter "github.com/nordtolk/booking/internal/adapter/http"
	"github.com/nordtolk/booking/internal/adapter/notify"
	"github.com/nordtolk/booking/internal/adapter/sqlite"
	"github.com/nordtolk/booking/internal/config"
	"github.com/nordtolk/booking/internal/domain"
	"github.com/nordtolk/booking/internal/worker"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting bookingd",
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBPath))

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize notifier", zap.Error(err))
	}

	clock := domain.SystemClock{}
	gate := domain.NewPreferenceGate(store, domain.QuietHours{Start: cfg.QuietStart, End: cfg.QuietEnd})
	dispatcher := domain.NewDispatcher(notifier, gate, clock, logger.Named("dispatch"))

	svc := domain.NewService(store, store, store, store, dispatcher, clock, logger.Named("booking"))
	svc.SetImmediateLead(cfg.ImmediateLead)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := httpAdapter.NewServer(svc, addr, logger.Named("http"))

	sweeper := worker.New(svc, cfg.SweepInterval, clock, logger.Named("sweeper"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go sweeper.Run(ctx)

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

// buildNotifier selects real delivery channels when credentials are present
// and falls back to the log-only sender otherwise.
func buildNotifier(cfg *config.Config, logger *zap.Logger) (domain.Notifier, error) {
	logSender := notify.NewLogSender(logger.Named("notify"))

	var email notify.EmailSender = logSender
	if cfg.MailgunKey != "" {
		sender, err := notify.NewMailgunSender(notify.MailgunConfig{
			Key:    cfg.MailgunKey,
			Domain: cfg.MailgunDomain,
			From:   cfg.MailgunFrom,
		})
		if err != nil {
			return nil, err
		}
		email = sender
	}

	var push notify.PushSender = logSender.Push()
	if cfg.PushURL != "" {
		push = notify.NewPushGateway(cfg.PushURL, cfg.PushKey)
	}

	return notify.New(email, push), nil
}
