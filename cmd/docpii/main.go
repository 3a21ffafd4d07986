package main

// @title           docpii API
// @version         1.0
// @description     Scans uploaded documents for personally identifiable information and records allow-listed findings.

// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/redis/go-redis/v9"

	_ "github.com/custodia-labs/docpii/docs"
	"github.com/custodia-labs/docpii/internal/adapters/driven/auth"
	awsadapter "github.com/custodia-labs/docpii/internal/adapters/driven/aws"
	"github.com/custodia-labs/docpii/internal/adapters/driven/postgres"
	redisqueue "github.com/custodia-labs/docpii/internal/adapters/driven/queue/redis"
	redisadapter "github.com/custodia-labs/docpii/internal/adapters/driven/redis"
	sentryadapter "github.com/custodia-labs/docpii/internal/adapters/driven/sentry"
	"github.com/custodia-labs/docpii/internal/adapters/driving/http"
	lambdaadapter "github.com/custodia-labs/docpii/internal/adapters/driving/lambda"
	"github.com/custodia-labs/docpii/internal/config"
	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
	"github.com/custodia-labs/docpii/internal/core/services"
	"github.com/custodia-labs/docpii/internal/logging"
	"github.com/custodia-labs/docpii/internal/worker"
)

var version = "dev"

func main() {
	// hash-secret prints a bcrypt hash for API_CLIENT_SECRET_HASH
	if len(os.Args) > 1 && os.Args[1] == "hash-secret" {
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: docpii hash-secret <secret>")
			os.Exit(2)
		}
		hash, err := auth.NewAdapter("").HashSecret(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	// Command line arg overrides RUN_MODE
	var mode string
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	cfg, err := config.LoadWithMode(mode)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Version == "dev" {
		cfg.Version = version
	}

	logger := logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
	logger.Info("docpii starting", "version", cfg.Version, "mode", cfg.RunMode, "backend", cfg.FindingsBackend)

	if err := run(cfg, logger); err != nil {
		logger.Error("docpii stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Setup context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ===== AWS clients (built once, shared by every invocation) =====
	clients, err := awsadapter.NewClients(ctx, awsadapter.Config{
		Region:   cfg.Region,
		Endpoint: cfg.Endpoint,
	})
	if err != nil {
		return err
	}

	// ===== Redis (queue and/or findings backend) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info("redis connected")
	}

	// ===== Findings store =====
	store, closeStore, err := newFindingStore(ctx, cfg, clients, redisClient, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// ===== Failure reporting =====
	var reporter *sentryadapter.Reporter
	if cfg.SentryDSN != "" {
		reporter, err = sentryadapter.Init(cfg.SentryDSN, cfg.Environment, cfg.Version)
		if err != nil {
			return fmt.Errorf("failed to initialise sentry: %w", err)
		}
		defer reporter.Flush(sentryadapter.DefaultFlushTimeout)
		logger.Info("sentry reporting enabled")
	}

	// ===== Core services =====
	if cfg.AllowListsEmpty() {
		logger.Warn("both PII allow-lists are empty, no findings will ever be recorded")
	}
	filter := services.NewPIIFilter(cfg.UniversalPII, cfg.CountryPII, logger)

	scanConfig := services.ScanOrchestratorConfig{
		Extractor:    awsadapter.NewTextractExtractor(clients.Textract),
		Detector:     awsadapter.NewComprehendDetector(clients.Comprehend),
		Store:        store,
		Filter:       filter,
		LanguageCode: cfg.LanguageCode,
		Logger:       logger,
	}
	if reporter != nil {
		scanConfig.Reporter = reporter
	}
	scanService := services.NewScanOrchestrator(scanConfig)

	switch cfg.RunMode {
	case config.ModeLambda:
		runLambda(scanService, reporter, logger)
		return nil

	case config.ModeAPI:
		return runAPI(ctx, cfg, scanService, store, nil, nil, logger)

	case config.ModeWorker:
		queue, err := newQueue(ctx, redisClient)
		if err != nil {
			return err
		}
		return runWorker(ctx, newWorker(cfg, queue, scanService, logger), logger)

	case config.ModeAll:
		queue, err := newQueue(ctx, redisClient)
		if err != nil {
			return err
		}
		errCh := make(chan error, 1)
		w := newWorker(cfg, queue, scanService, logger)
		go func() { errCh <- runWorker(ctx, w, logger) }()
		if err := runAPI(ctx, cfg, scanService, store, queue, w, logger); err != nil {
			return err
		}
		return <-errCh

	default:
		return fmt.Errorf("unknown mode: %s (use: lambda, api, worker, or all)", cfg.RunMode)
	}
}

// newFindingStore connects the configured findings backend.
func newFindingStore(
	ctx context.Context,
	cfg *config.Config,
	clients *awsadapter.Clients,
	redisClient *redis.Client,
	logger *slog.Logger,
) (driven.FindingRepository, func(), error) {
	switch cfg.FindingsBackend {
	case config.BackendPostgres:
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.InitSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("using PostgreSQL findings store")
		return postgres.NewFindingStore(db), func() { db.Close() }, nil

	case config.BackendRedis:
		logger.Info("using Redis findings store", "ttl", cfg.FindingTTL)
		return redisadapter.NewFindingStore(redisClient, cfg.FindingTTL), func() {}, nil

	default:
		logger.Info("using DynamoDB findings store", "table", cfg.DynamoDBTable)
		return awsadapter.NewDynamoFindingStore(clients.DynamoDB, cfg.DynamoDBTable), func() {}, nil
	}
}

func newQueue(ctx context.Context, redisClient *redis.Client) (*redisqueue.Queue, error) {
	hostname, _ := os.Hostname()
	queue, err := redisqueue.NewQueue(ctx, redisClient, fmt.Sprintf("worker-%s-%d", hostname, os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to create task queue: %w", err)
	}
	return queue, nil
}

// runLambda hands control to the Lambda runtime. It does not return.
func runLambda(scanService *services.ScanOrchestrator, reporter *sentryadapter.Reporter, logger *slog.Logger) {
	handler := lambdaadapter.NewHandler(scanService, logger)

	lambda.Start(func(ctx context.Context, event events.S3Event) (*domain.ScanResult, error) {
		result, err := handler.Handle(ctx, event)
		if err != nil {
			// The execution environment may be frozen as soon as we return
			reporter.Flush(sentryadapter.DefaultFlushTimeout)
		}
		return result, err
	})
}

func runAPI(
	ctx context.Context,
	cfg *config.Config,
	scanService *services.ScanOrchestrator,
	store driven.FindingRepository,
	queue driven.TaskQueue,
	w *worker.Worker,
	logger *slog.Logger,
) error {
	authService := services.NewAuthService(auth.NewAdapter(cfg.JWTSecret), []domain.ClientCredential{
		{ClientID: cfg.APIClientID, SecretHash: cfg.APIClientSecretHash},
	}, cfg.TokenTTL)

	deps := http.Deps{
		ScanService:    scanService,
		FindingService: services.NewFindingService(store),
		AuthService:    authService,
		Store:          store,
	}
	if queue != nil {
		deps.TaskQueue = queue
	}
	if w != nil {
		deps.Worker = w
	}

	server := http.NewServer(http.Config{
		Host:    "0.0.0.0",
		Port:    cfg.Port,
		Version: cfg.Version,
		Logger:  logger,
	}, deps)

	return server.Start(ctx)
}

func newWorker(
	cfg *config.Config,
	queue driven.TaskQueue,
	scanService *services.ScanOrchestrator,
	logger *slog.Logger,
) *worker.Worker {
	return worker.NewWorker(worker.WorkerConfig{
		TaskQueue:      queue,
		Scanner:        scanService,
		Logger:         logger,
		Concurrency:    cfg.WorkerConcurrency,
		DequeueTimeout: cfg.WorkerDequeueTimeout,
		RateLimit:      cfg.WorkerRateLimit,
	})
}

// runWorker processes queued scan tasks until ctx is cancelled.
func runWorker(ctx context.Context, w *worker.Worker, logger *slog.Logger) error {
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	logger.Info("worker started, processing scan tasks")

	<-ctx.Done()

	logger.Info("stopping worker")
	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(30 * time.Second):
		logger.Warn("worker did not stop within 30s")
	}
	return nil
}
