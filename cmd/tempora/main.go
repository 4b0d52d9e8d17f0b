package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tempora-hr/tempora/internal/accounting"
	"github.com/tempora-hr/tempora/internal/adjustment"
	"github.com/tempora-hr/tempora/internal/app"
	"github.com/tempora-hr/tempora/internal/auth"
	"github.com/tempora-hr/tempora/internal/company"
	"github.com/tempora-hr/tempora/internal/directory"
	"github.com/tempora-hr/tempora/internal/observability"
	"github.com/tempora-hr/tempora/internal/platform/cache"
	"github.com/tempora-hr/tempora/internal/platform/db"
	"github.com/tempora-hr/tempora/internal/reports"
	"github.com/tempora-hr/tempora/internal/shared"
	"github.com/tempora-hr/tempora/internal/timeclock"
	"github.com/tempora-hr/tempora/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "tempora_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	metrics := observability.NewMetrics()

	directoryRepo := directory.NewRepository(dbpool)
	directoryService := directory.NewService(directoryRepo)
	directoryHandler := directory.NewHandler(logger, directoryService)

	authService := auth.NewService(directoryService)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	punchRepo := timeclock.NewRepository(dbpool)
	punchService := timeclock.NewService(punchRepo, loc)
	punchHandler := timeclock.NewHandler(logger, punchService, metrics, loc)

	balanceRepo := accounting.NewRepository(dbpool)
	balanceService := accounting.NewService(punchRepo, directoryService, balanceRepo, loc)
	balanceService.WithMetrics(metrics)
	balanceHandler := accounting.NewHandler(logger, balanceService, loc)

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	adjustmentRepo := adjustment.NewRepository(dbpool)
	adjustmentService := adjustment.NewService(adjustmentRepo, punchRepo, directoryService, logger, loc)
	adjustmentService.WithQueue(queueClient)
	adjustmentHandler := adjustment.NewHandler(logger, adjustmentService)

	companyRepo := company.NewRepository(dbpool)
	companyService := company.NewService(companyRepo)
	companyHandler := company.NewHandler(logger, companyService)

	reportService := reports.NewService(directoryService, balanceService, punchService, loc)
	reportHandler := reports.NewHandler(logger, reportService, directoryService, loc)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		AuthHandler:       authHandler,
		TimeclockHandler:  punchHandler,
		AccountingHandler: balanceHandler,
		AdjustmentHandler: adjustmentHandler,
		DirectoryHandler:  directoryHandler,
		CompanyHandler:    companyHandler,
		ReportsHandler:    reportHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
