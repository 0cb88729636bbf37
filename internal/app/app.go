package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/auth"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/config"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/event"
	handler "github.com/infLocus/Crowdsourced-Review-Platform/internal/handler/http"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository/postgres"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository/redis"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/search"
	esengine "github.com/infLocus/Crowdsourced-Review-Platform/internal/search/elasticsearch"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/search/memory"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/service"
	"github.com/infLocus/Crowdsourced-Review-Platform/migrations"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/database"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/health"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/httpclient"
	pkgkafka "github.com/infLocus/Crowdsourced-Review-Platform/pkg/kafka"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/middleware"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/tracing"
)

// App wires together all dependencies and runs the directory service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumers      []*pkgkafka.Consumer
	searchService  *service.SearchService
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
	stopLimiter    context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, version string, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.closeResources()
		}
	}()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing(version))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(reg, pool, config.ServiceName); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if cfg.SlowQuery > 0 {
		database.SetSlowQueryLogging(cfg.SlowQuery, logger)
	}

	// Initialize Redis.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = redisClient
	logger.Info("connected to Redis", slog.String("host", cfg.RedisHost), slog.Int("port", cfg.RedisPort))

	// Repositories.
	userRepo := postgres.NewUserRepository(pool)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(pool)
	businessRepo := postgres.NewBusinessRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	catalogCache := redis.NewCatalogCache(redisClient, cfg.CacheTTL)

	// Search engine.
	engine, err := newSearchEngine(ctx, cfg, reg, logger)
	if err != nil {
		return nil, err
	}

	projector := event.NewProjector(reviewRepo, businessRepo, engine, catalogCache, logger)

	// Event publication: Kafka with a projector consumer per topic, or an
	// in-process bus that runs the projector synchronously.
	var publisher pkgkafka.Publisher
	if cfg.KafkaEnabled {
		kafkaMetrics := pkgkafka.NewMetrics(reg)
		a.producer = pkgkafka.NewProducer(cfg.Producer(), kafkaMetrics, logger)
		a.dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		publisher = a.producer

		idempotency := redis.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)
		for _, topic := range []string{event.TopicReviewEvents, event.TopicBusinessEvents} {
			a.consumers = append(a.consumers, pkgkafka.NewConsumer(cfg.Consumer(topic), projector.Handle, logger,
				pkgkafka.WithDLQ(a.dlq),
				pkgkafka.WithIdempotency(idempotency),
				pkgkafka.WithMetrics(kafkaMetrics),
				pkgkafka.WithRetries(cfg.KafkaMaxRetries, cfg.KafkaRetryBackoff),
			))
		}
		logger.Info("kafka initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Int("consumers", len(a.consumers)),
		)
	} else {
		publisher = event.NewLocalBus(projector.Handle, logger)
		logger.Info("kafka disabled, projecting events in process")
	}
	eventProducer := event.NewProducer(publisher, logger)

	// Services.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	var cache repository.CatalogCache = catalogCache
	services := handler.Services{
		Auth:       service.NewAuthService(userRepo, refreshTokenRepo, jwtManager, logger),
		Businesses: service.NewBusinessService(businessRepo, reviewRepo, cache, eventProducer, logger),
		Reviews:    service.NewReviewService(reviewRepo, businessRepo, cache, eventProducer, logger),
		Admin:      service.NewAdminService(reviewRepo, businessRepo, userRepo, cache, eventProducer, logger),
		Search:     service.NewSearchService(engine, businessRepo, logger),
	}
	a.searchService = services.Search

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("search", engine.Ping)
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	a.stopLimiter = stopLimiter

	// HTTP router.
	router := handler.NewRouter(services, handler.RouterConfig{
		ServiceName: config.ServiceName,
		Tokens:      jwtManager.Validator(),
		Health:      healthHandler,
		CORS:        cfg.CORS(),
		AuthLimiter: middleware.NewRateLimiter(limiterCtx, cfg.AuthRateLimit(), logger),
		Metrics:     middleware.NewHTTPMetrics(reg, config.ServiceName),
		Gatherer:    reg,
		PprofCIDRs:  cfg.PprofCIDRs,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ok = true
	return a, nil
}

// newSearchEngine builds the configured engine. Elasticsearch traffic goes
// through a circuit breaker so a failing cluster is skipped quickly and
// searches fall back to the database.
func newSearchEngine(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (search.Engine, error) {
	if cfg.SearchEngine != config.SearchElasticsearch {
		logger.Info("in-memory search engine initialized")
		return memory.New(), nil
	}

	breakerCfg := httpclient.DefaultCircuitBreakerConfig("elasticsearch")
	breakerCfg.MinRequests = cfg.SearchBreakerFailures
	breakerCfg.Timeout = cfg.SearchBreakerTimeout
	transport := httpclient.NewBreakerTransport(
		httpclient.NewTransport(httpclient.DefaultTransportConfig()),
		breakerCfg,
		httpclient.NewBreakerMetrics(reg),
		logger,
	)

	engine, err := esengine.New(ctx, esengine.Config{
		Addresses: cfg.ElasticsearchURLs,
		Index:     cfg.ElasticsearchIndex,
		Transport: transport,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init elasticsearch engine: %w", err)
	}
	logger.Info("elasticsearch search engine initialized",
		slog.Any("urls", cfg.ElasticsearchURLs),
		slog.String("index", cfg.ElasticsearchIndex),
	)
	return engine, nil
}

// Run seeds the search index, starts the HTTP server and Kafka consumers,
// and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.searchService.Rebuild(ctx); err != nil {
		a.logger.Warn("initial search index build failed", slog.String("error", err.Error()))
	}

	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("component failed", slog.String("error", err.Error()))
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush spans of drained requests)
// 3. Consumers, Kafka producers, Redis and the PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases everything NewApp acquired. It tolerates a
// partially built App.
func (a *App) closeResources() error {
	var errs []error

	if a.tracerShutdown != nil {
		tracerCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.stopLimiter != nil {
		a.stopLimiter()
	}
	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("kafka dlq close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}
