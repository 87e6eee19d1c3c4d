package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SscSPs/sacco_ledger/internal/adapters/notify"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/core/services"
	"github.com/SscSPs/sacco_ledger/internal/middleware"
	"github.com/SscSPs/sacco_ledger/internal/platform/config"
	"github.com/SscSPs/sacco_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/sacco_ledger/pkg/database"
)

const maintenanceTimeout = 10 * time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("component", "scheduler"))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, true)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	serviceContainer := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool), notify.LogNotifier{})

	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))
	if err := setupCronJobs(c, cfg, serviceContainer.Maintenance, logger); err != nil {
		logger.Error("Failed to schedule maintenance", slog.String("cron", cfg.MaintenanceCron), slog.String("error", err.Error()))
		os.Exit(1)
	}

	c.Start()
	logger.Info("Scheduler started", slog.String("cron", cfg.MaintenanceCron))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, maintenance portssvc.MaintenanceSvc, logger *slog.Logger) error {
	_, err := c.AddFunc(cfg.MaintenanceCron, func() {
		runMaintenance(maintenance, logger)
	})
	return err
}

func runMaintenance(maintenance portssvc.MaintenanceSvc, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
	defer cancel()
	ctx = middleware.WithLogger(ctx, logger)

	logger.Info("Running daily loan maintenance")
	report, err := maintenance.RunDailyMaintenance(ctx, time.Now().UTC())
	if err != nil {
		logger.Error("Daily loan maintenance failed", slog.String("error", err.Error()))
		return
	}
	logger.Info("Daily loan maintenance finished",
		slog.Int64("overdue_installments", report.OverdueInstallments),
		slog.Int64("matured_loans", report.MaturedLoans))
}
