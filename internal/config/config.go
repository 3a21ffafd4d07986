package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// Run modes
const (
	ModeLambda = "lambda"
	ModeAPI    = "api"
	ModeWorker = "worker"
	ModeAll    = "all"
)

// Findings backends
const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all runtime configuration. It is read once at startup and never mutated.
type Config struct {
	// AWS
	Region   string // AWS_REGION, default us-east-1
	Endpoint string // AWS_ENDPOINT_URL, optional override for local stacks

	// Pipeline
	UniversalPII domain.AllowList // UNIVERSAL_PII_TYPES
	CountryPII   domain.AllowList // COUNTRY_PII_TYPES
	LanguageCode string           // LANGUAGE_CODE, default en

	// Findings storage
	FindingsBackend string        // FINDINGS_BACKEND, default dynamodb
	DynamoDBTable   string        // DYNAMODB_TABLE
	DatabaseURL     string        // DATABASE_URL
	RedisURL        string        // REDIS_URL
	FindingTTL      time.Duration // FINDING_TTL, redis backend only

	// Runtime
	RunMode string // RUN_MODE
	Port    int    // PORT
	Version string // VERSION

	// API authentication
	JWTSecret           string        // JWT_SECRET
	APIClientID         string        // API_CLIENT_ID, default docpii
	APIClientSecretHash string        // API_CLIENT_SECRET_HASH, bcrypt
	TokenTTL            time.Duration // TOKEN_TTL, default 1h

	// Logging and alerting
	LogLevel    string // LOG_LEVEL
	LogFormat   string // LOG_FORMAT
	SentryDSN   string // SENTRY_DSN
	Environment string // ENVIRONMENT

	// Worker
	WorkerConcurrency    int     // WORKER_CONCURRENCY
	WorkerDequeueTimeout int     // WORKER_DEQUEUE_TIMEOUT, seconds
	WorkerRateLimit      float64 // WORKER_RATE_LIMIT, scans per second, 0 = unlimited
}

// Load reads .env (if present) then environment variables and returns a validated Config.
func Load() (*Config, error) {
	return LoadWithMode("")
}

// LoadWithMode is Load with mode, when non-empty, taking precedence over RUN_MODE.
// The override is applied before validation so mode-specific requirements follow it.
func LoadWithMode(mode string) (*Config, error) {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()

	universal, err := domain.ParseAllowList(getEnv("UNIVERSAL_PII_TYPES", ""))
	if err != nil {
		return nil, fmt.Errorf("UNIVERSAL_PII_TYPES: %w", err)
	}
	country, err := domain.ParseAllowList(getEnv("COUNTRY_PII_TYPES", ""))
	if err != nil {
		return nil, fmt.Errorf("COUNTRY_PII_TYPES: %w", err)
	}

	onLambda := os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""
	defaultMode := ModeAPI
	logFormat := "text"
	if onLambda {
		defaultMode = ModeLambda
		logFormat = "json"
	}

	cfg := &Config{
		Region:       getEnv("AWS_REGION", "us-east-1"),
		Endpoint:     getEnv("AWS_ENDPOINT_URL", ""),
		UniversalPII: universal,
		CountryPII:   country,
		LanguageCode: strings.ToLower(getEnv("LANGUAGE_CODE", "en")),

		FindingsBackend: strings.ToLower(getEnv("FINDINGS_BACKEND", BackendDynamoDB)),
		DynamoDBTable:   getEnv("DYNAMODB_TABLE", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		FindingTTL:      getEnvDuration("FINDING_TTL", 0),

		RunMode: strings.ToLower(getEnv("RUN_MODE", defaultMode)),
		Port:    getEnvInt("PORT", 8080),
		Version: getEnv("VERSION", "dev"),

		JWTSecret:           getEnv("JWT_SECRET", ""),
		APIClientID:         getEnv("API_CLIENT_ID", "docpii"),
		APIClientSecretHash: getEnv("API_CLIENT_SECRET_HASH", ""),
		TokenTTL:            getEnvDuration("TOKEN_TTL", time.Hour),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", logFormat)),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		Environment: getEnv("ENVIRONMENT", "development"),

		WorkerConcurrency:    getEnvInt("WORKER_CONCURRENCY", 2),
		WorkerDequeueTimeout: getEnvInt("WORKER_DEQUEUE_TIMEOUT", 5),
		WorkerRateLimit:      getEnvFloat("WORKER_RATE_LIMIT", 0),
	}

	if mode != "" {
		cfg.RunMode = strings.ToLower(mode)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.RunMode {
	case ModeLambda, ModeAPI, ModeWorker, ModeAll:
	default:
		errs = append(errs, fmt.Errorf("RUN_MODE must be one of lambda, api, worker, all (got %q)", c.RunMode))
	}

	switch c.FindingsBackend {
	case BackendDynamoDB:
		if c.DynamoDBTable == "" {
			errs = append(errs, errors.New("DYNAMODB_TABLE is required for the dynamodb backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("FINDINGS_BACKEND must be one of dynamodb, postgres, redis (got %q)", c.FindingsBackend))
	}

	if c.NeedsQueue() && c.RedisURL == "" {
		errs = append(errs, fmt.Errorf("REDIS_URL is required in %s mode", c.RunMode))
	}

	if c.ServesAPI() {
		if c.JWTSecret == "" {
			errs = append(errs, fmt.Errorf("JWT_SECRET is required in %s mode", c.RunMode))
		}
		if c.APIClientSecretHash == "" {
			errs = append(errs, fmt.Errorf("API_CLIENT_SECRET_HASH is required in %s mode", c.RunMode))
		}
		if c.TokenTTL <= 0 {
			errs = append(errs, errors.New("TOKEN_TTL must be positive"))
		}
	}

	if len(c.LanguageCode) != 2 {
		errs = append(errs, fmt.Errorf("LANGUAGE_CODE must be a two-letter code (got %q)", c.LanguageCode))
	}

	if c.WorkerConcurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}
	if c.WorkerRateLimit < 0 {
		errs = append(errs, errors.New("WORKER_RATE_LIMIT must not be negative"))
	}

	return errors.Join(errs...)
}

// NeedsQueue reports whether the run mode consumes the task queue.
func (c *Config) NeedsQueue() bool {
	return c.RunMode == ModeWorker || c.RunMode == ModeAll
}

// ServesAPI reports whether the run mode starts the HTTP server.
func (c *Config) ServesAPI() bool {
	return c.RunMode == ModeAPI || c.RunMode == ModeAll
}

// AllowListsEmpty reports whether every detection will be rejected.
func (c *Config) AllowListsEmpty() bool {
	return c.UniversalPII.Len() == 0 && c.CountryPII.Len() == 0
}

// getEnv returns the variable, falling back to its lower-case spelling and then defaultValue.
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	if value := strings.TrimSpace(os.Getenv(strings.ToLower(key))); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := getEnv(key, ""); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := getEnv(key, ""); value != "" {
		if result, err := strconv.ParseFloat(value, 64); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := getEnv(key, ""); value != "" {
		if result, err := time.ParseDuration(value); err == nil {
			return result
		}
	}
	return defaultValue
}
