package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"devwise/internal/adapters/anthropic"
	"devwise/internal/adapters/brave"
	"devwise/internal/adapters/config"
	"devwise/internal/adapters/docstore"
	"devwise/internal/adapters/errors/noop"
	"devwise/internal/adapters/errors/sentry"
	"devwise/internal/adapters/postgres"
	"devwise/internal/adapters/redis"
	"devwise/internal/api"
	"devwise/internal/api/health"
	"devwise/internal/metrics"
	repo "devwise/internal/repository/postgres"
	budgetsvc "devwise/internal/services/budget"
	cachesvc "devwise/internal/services/cache"
	chatsvc "devwise/internal/services/chat"
	extractionsvc "devwise/internal/services/extraction"
	"devwise/internal/services/ratelimit"
	ratingsvc "devwise/internal/services/rating"
	researchsvc "devwise/internal/services/research"
	usagesvc "devwise/internal/services/usage"
	"devwise/internal/workers"
	"devwise/pkg/errors"
	"devwise/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer func() { _ = pgClient.Close() }()

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() { _ = redisClient.Close() }()
	}

	documents, err := docstore.NewFilesystemStore(cfg.Storage.Root)
	if err != nil {
		log.Fatalf("Failed to init document storage: %v", err)
	}

	db := pgClient.DB()

	benchmarks := repo.NewBenchmarkRepository(db)
	budgets := repo.NewBudgetRepository(db)
	usageRepo := repo.NewUsageRepository(db)
	jobs := repo.NewResearchRepository(db)
	proposals := repo.NewProposalRepository(db)
	lineItems := repo.NewLineItemRepository(db)
	projects := repo.NewProjectRepository(db)
	parties := repo.NewPartyRepository(db)
	messages := repo.NewChatRepository(db)
	ratings := repo.NewRatingRepository(db)

	searchClient := brave.NewClient(cfg.Brave)
	modelClient := anthropic.NewClient(cfg.Anthropic)

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient.Client())
		log.Info("Rate limiting backed by Redis")
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(log)
		defer memLimiter.Close()
		limiter = memLimiter
		log.Info("Rate limiting in-process (no Redis configured)")
	}

	cacheService := cachesvc.NewService(benchmarks, jobs, usageRepo, log.With("component", "cache"))
	budgetService := budgetsvc.NewService(budgets, log.With("component", "budget"))
	usageService := usagesvc.NewService(usageRepo, log.With("component", "usage"))

	researchService := researchsvc.NewService(
		lineItems, proposals, projects, jobs,
		cacheService, budgetService, usageService,
		limiter, searchClient, modelClient,
		cfg.Anthropic, cfg.RateLimit, log.With("component", "research"),
	)
	extractionService := extractionsvc.NewService(
		proposals, lineItems, parties,
		budgetService, usageService, limiter, modelClient, documents,
		cfg.Anthropic, cfg.RateLimit, log.With("component", "extraction"),
	)
	chatService := chatsvc.NewService(
		lineItems, proposals, projects, parties, jobs, messages,
		budgetService, usageService, modelClient,
		cfg.Anthropic, log.With("component", "chat"),
	)
	ratingService := ratingsvc.NewService(
		ratings, lineItems, proposals, projects,
		cacheService, log.With("component", "rating"),
	)

	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewJobReaperWorker(jobs, proposals, cfg.Workers))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	healthHandler := health.New(
		log.With("component", "health"),
		db,
		rawRedis(redisClient),
		cfg.App.Name,
		cfg.App.Version,
	)

	server := api.NewServer(cfg, api.Deps{
		Identity:   api.NewHeaderIdentity(),
		Health:     healthHandler,
		Research:   researchService,
		Extraction: extractionService,
		Chat:       chatService,
		Ratings:    ratingService,
		Budget:     budgetService,
		Cache:      cacheService,
		Usage:      usageService,
		LineItems:  lineItems,
		Proposals:  proposals,
		Projects:   projects,
		Documents:  documents,
		Limiter:    limiter,
	}, log.With("component", "api"))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info("System initialized successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("Received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil {
			log.Errorf("HTTP server failed: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown failed: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Errorf("Worker shutdown failed: %v", err)
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer flushCancel()
	_ = errorTracker.Flush(flushCtx)

	log.Info("Shutdown complete")
}

// rawRedis unwraps the adapter client for components that take the
// driver directly. Nil when Redis is not configured.
func rawRedis(c *redis.Client) *goredis.Client {
	if c == nil {
		return nil
	}
	return c.Client()
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}
