// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"kitty-webhook/internal/config"
	"kitty-webhook/internal/domain/ports/adapter"
	payAdapters "kitty-webhook/internal/infra/adapters/payment"
	tele "kitty-webhook/internal/infra/adapters/telegram"
	"kitty-webhook/internal/infra/api"
	"kitty-webhook/internal/infra/logging"
	"kitty-webhook/internal/infra/metrics"
	"kitty-webhook/internal/infra/scheduler"
	"kitty-webhook/internal/usecase"
)

// Set via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// .env is optional and never overrides the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv: %v", err)
	}

	// ---- Config ----
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config %s: %v", cfgPath, err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatalf("config env: %v", err)
	}

	// ---- Logging ----
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() { _ = closeLog() }()

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("exiting")
		_ = closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Telegram ----
	var bot adapter.TelegramBotAdapter
	if cfg.Telegram.DryRun {
		bot = tele.NewNoopBotAdapter(logger)
		logger.Warn().Msg("telegram.dry_run enabled; messages are logged, not sent")
	} else {
		rb, err := tele.NewRealTelegramBotAdapter(cfg.TelegramBotToken, cfg.Telegram, logger)
		if err != nil {
			return err
		}
		bot = rb
	}

	// ---- Payment gateway ----
	gateway, err := payAdapters.NewRazorpayGateway(cfg.RazorpayWebhookSecret)
	if err != nil {
		return err
	}

	// ---- Use cases ----
	notifUC, err := usecase.NewNotificationUseCase(bot, cfg.TelegramChatID.String(), cfg.FileURL, logger)
	if err != nil {
		return err
	}
	webhookUC, err := usecase.NewWebhookUseCase(gateway, notifUC, logger)
	if err != nil {
		return err
	}
	statusUC, err := usecase.NewBotStatusUseCase(bot, logger)
	if err != nil {
		return err
	}

	// ---- HTTP ----
	srv := api.NewServer(webhookUC, cfg.Metrics, logger).HTTPServer(cfg.HTTP)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", version).Msg("http listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ---- Bot connectivity prober ----
	prober := scheduler.New("bot-status", cfg.Prober.Interval.Std(), statusUC, logger,
		scheduler.WithTimeout(cfg.Prober.Timeout.Std()),
		scheduler.WithRunOnStart(true),
	)
	prober.Start(ctx)
	defer prober.Stop()

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout.Std())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("http server stopped")
	return nil
}
