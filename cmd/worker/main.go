package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/peerprog/peerride/internal/database"
	"github.com/peerprog/peerride/internal/mailer"
	"github.com/peerprog/peerride/internal/tasks"
	"github.com/peerprog/peerride/pkg/config"
	"github.com/peerprog/peerride/pkg/queue"
	"github.com/peerprog/peerride/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting PeerRide worker", "env", cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	mail := mailer.NewSMTPClient(
		cfg.SMTP.Addr(),
		cfg.SMTP.Host,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	handler := tasks.NewHandler(db, logger, mail, cfg.OTP.TTL())

	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	server := queue.NewServer(&cfg.Redis, 10)

	scheduler, err := newScheduler(cfg)
	if err != nil {
		logger.Error("failed to configure scheduler", "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("worker processing tasks")
		if err := server.Run(mux); err != nil {
			errCh <- fmt.Errorf("task server: %w", err)
		}
	}()
	go func() {
		logger.Info("scheduler running", "otp_cleanup_cron", cfg.OTP.CleanupCron)
		if err := scheduler.Run(); err != nil {
			errCh <- fmt.Errorf("scheduler: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("worker error", "error", err)
	case <-quit:
		logger.Info("shutting down worker...")
	}

	scheduler.Shutdown()
	server.Shutdown()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}

func newScheduler(cfg *config.Config) (*asynq.Scheduler, error) {
	if err := util.ValidateCronExpr(cfg.OTP.CleanupCron); err != nil {
		return nil, fmt.Errorf("invalid OTP_CLEANUP_CRON %q: %w", cfg.OTP.CleanupCron, err)
	}

	scheduler := queue.NewScheduler(&cfg.Redis)
	if _, err := scheduler.Register(cfg.OTP.CleanupCron, tasks.NewOTPCleanupTask(), asynq.Queue("low")); err != nil {
		return nil, fmt.Errorf("registering otp cleanup: %w", err)
	}
	return scheduler, nil
}
