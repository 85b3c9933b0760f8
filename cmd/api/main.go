package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httpapi "github.com/solterra/operations-service/internal/api/http"
	"github.com/solterra/operations-service/internal/api/http/handlers"
	"github.com/solterra/operations-service/internal/auth"
	"github.com/solterra/operations-service/internal/config"
	"github.com/solterra/operations-service/internal/events"
	"github.com/solterra/operations-service/internal/observability"
	"github.com/solterra/operations-service/internal/persistence"
	"github.com/solterra/operations-service/internal/repository"
	"github.com/solterra/operations-service/internal/scheduler"
	"github.com/solterra/operations-service/internal/service"
	"github.com/solterra/operations-service/internal/worker"
)

const dedupTTL = 48 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	cancel()
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer postgres.Close()

	if cfg.Postgres.RunMigrations {
		migCtx, migCancel := context.WithTimeout(context.Background(), 60*time.Second)
		err = persistence.RunMigrations(migCtx, postgres.PoolHandle(), logger)
		migCancel()
		if err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	pool := postgres.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	noteRepo := repository.NewTicketNoteRepository(pool)
	contractRepo := repository.NewContractRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	cutRepo := repository.NewSalesCutRepository(pool)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		AgentRepo:  agentRepo,
		NoteRepo:   noteRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	slaService := service.NewSLAService(service.SLADependencies{
		TicketRepo: ticketRepo,
		NoteRepo:   noteRepo,
		Notifier:   notificationService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo: ticketRepo,
		AgentRepo:  agentRepo,
		NoteRepo:   noteRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	salesService := service.NewSalesService(service.SalesDependencies{
		ContractRepo: contractRepo,
		PaymentRepo:  paymentRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	cutService := service.NewSalesCutService(service.SalesCutDependencies{
		CutRepo: cutRepo,
		Dedup:   persistence.NewEventDeduper(redis, dedupTTL),
		Logger:  logger,
	})
	authService := service.NewAuthService(*cfg, agentRepo)

	worker.RegisterEventHandlers(dispatcher, notificationService, cutService)

	jobs := scheduler.New(cfg.Lifecycle, slaService, assignmentService, cutService, metrics, logger)
	if err := jobs.Start(); err != nil {
		logger.Fatal("scheduler start failed", zap.Error(err))
	}
	defer jobs.Stop()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})

	httpapi.RegisterMiddlewares(app, cfg, logger, metrics)
	httpapi.RegisterRoutes(app, httpapi.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, postgres, redis),
		Auth:      handlers.NewAuthHandler(authService),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Sales:     handlers.NewSalesHandler(salesService),
		Cuts:      handlers.NewCutsHandler(cutService),
		Lifecycle: handlers.NewLifecycleHandler(slaService, assignmentService, cfg.Lifecycle),
		AuthMW:    auth.NewAuthMiddleware(authService.TokenManager(), agentRepo),
	})

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("http server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
