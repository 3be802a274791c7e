package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/frontline-service/internal/api/http"
	"github.com/spec-kit/frontline-service/internal/api/http/handlers"
	"github.com/spec-kit/frontline-service/internal/auth"
	"github.com/spec-kit/frontline-service/internal/classify"
	"github.com/spec-kit/frontline-service/internal/config"
	"github.com/spec-kit/frontline-service/internal/events"
	"github.com/spec-kit/frontline-service/internal/observability"
	"github.com/spec-kit/frontline-service/internal/persistence"
	"github.com/spec-kit/frontline-service/internal/pipeline"
	"github.com/spec-kit/frontline-service/internal/repository"
	"github.com/spec-kit/frontline-service/internal/repository/memory"
	"github.com/spec-kit/frontline-service/internal/scheduling"
	"github.com/spec-kit/frontline-service/internal/service"
	"github.com/spec-kit/frontline-service/internal/worker"
)

type repositories struct {
	citizens     repository.CitizenRepository
	cases        repository.CaseRepository
	services     repository.ServiceRepository
	appointments repository.AppointmentRepository
	updates      repository.CaseUpdateRepository
	metrics      repository.MetricRepository
	workers      repository.WorkerAccountRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pool)

	var ledger scheduling.Ledger
	var healthRedis *persistence.Redis
	if redis.Ping(ctx) == nil {
		ledger = scheduling.NewRedisLedger(redis.Client)
		healthRedis = redis
	} else {
		logger.Warn("redis unreachable; using in-memory capacity ledger")
		ledger = scheduling.NewMemoryLedger()
	}

	dispatcher := events.NewInMemoryDispatcher()

	var oracle classify.Strategy
	if cfg.Oracle.Enabled() {
		oracle = classify.NewOracleClassifier(cfg.Oracle.URL, cfg.Oracle.Timeout())
	}
	classifier := classify.NewFallback(oracle, classify.NewRuleClassifier(), logger)

	allocator := scheduling.NewAllocator(ledger, cfg.Scheduling, logger)
	matcherService := service.NewMatcherService(repos.services, ledger, logger)
	notificationService := service.NewNotificationService(repos.appointments, cfg.Notification, logger)
	notificationService.RegisterHandlers(dispatcher)
	metricsService := service.NewMetricsService(repos.metrics, repos.cases, repos.services, logger)

	orchestrator := pipeline.NewOrchestrator(pipeline.Dependencies{
		CaseRepo:        repos.cases,
		CitizenRepo:     repos.citizens,
		ServiceRepo:     repos.services,
		AppointmentRepo: repos.appointments,
		UpdateRepo:      repos.updates,
		Classifier:      classifier,
		Matcher:         matcherService,
		Allocator:       allocator,
		Ledger:          ledger,
		Notifier:        notificationService,
		Metrics:         metricsService,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})

	pipelinePool := worker.NewPool(orchestrator, cfg.App.PipelineWorkers, cfg.App.PipelineWorkers*64, logger)
	defer pipelinePool.Stop()

	citizenService := service.NewCitizenService(repos.citizens, logger)
	catalogService := service.NewCatalogService(repos.services, logger)
	caseService := service.NewCaseService(repos.cases, repos.citizens, repos.updates, repos.appointments, orchestrator, pipelinePool, dispatcher, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	workerService := service.NewWorkerService(repos.workers, tokens, cfg.Auth.BcryptCost, logger)
	authMiddleware := auth.NewMiddleware(tokens, repos.workers)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var healthPg *persistence.Postgres
	if pool != nil {
		healthPg = pg
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, healthPg, healthRedis),
		Citizens:       handlers.NewCitizensHandler(citizenService),
		Cases:          handlers.NewCasesHandler(caseService),
		Services:       handlers.NewServicesHandler(catalogService),
		Workers:        handlers.NewWorkersHandler(workerService, metricsService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func buildRepositories(pool *pgxpool.Pool) repositories {
	if pool == nil {
		return repositories{
			citizens:     memory.NewCitizenRepo(),
			cases:        memory.NewCaseRepo(),
			services:     memory.NewServiceRepo(),
			appointments: memory.NewAppointmentRepo(),
			updates:      memory.NewCaseUpdateRepo(),
			metrics:      memory.NewMetricRepo(),
			workers:      memory.NewWorkerAccountRepo(),
		}
	}
	return repositories{
		citizens:     repository.NewCitizenRepository(pool),
		cases:        repository.NewCaseRepository(pool),
		services:     repository.NewServiceRepository(pool),
		appointments: repository.NewAppointmentRepository(pool),
		updates:      repository.NewCaseUpdateRepository(pool),
		metrics:      repository.NewMetricRepository(pool),
		workers:      repository.NewWorkerAccountRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
