package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/tempora-hr/tempora/internal/accounting"
	"github.com/tempora-hr/tempora/internal/app"
	"github.com/tempora-hr/tempora/internal/directory"
	jobmetrics "github.com/tempora-hr/tempora/internal/jobs"
	"github.com/tempora-hr/tempora/internal/platform/db"
	"github.com/tempora-hr/tempora/internal/timeclock"
	"github.com/tempora-hr/tempora/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	loc := cfg.Location()

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	directoryRepo := directory.NewRepository(pool)
	directoryService := directory.NewService(directoryRepo)

	punchRepo := timeclock.NewRepository(pool)
	balanceRepo := accounting.NewRepository(pool)
	balanceService := accounting.NewService(punchRepo, directoryService, balanceRepo, loc)

	recomputeJob := jobs.NewBalanceRecomputeJob(balanceService, directoryService, logger, jobmetrics.NewMetrics(nil), loc)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Location:  loc,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBalanceRecompute, Handler: recomputeJob.Handle},
			{Type: jobs.TaskBalanceSweep, Handler: recomputeJob.HandleSweep},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 2 * * *", Task: jobs.NewBalanceSweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
