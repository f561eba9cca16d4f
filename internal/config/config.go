package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

// Token strategies.
const (
	AuthStrategyJWT  = "jwt"
	AuthStrategyHMAC = "hmac"
)

// Config holds application level configuration loaded from a YAML file,
// environment variables and flags, in increasing order of precedence.
type Config struct {
	RunAddress      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	StorageDriver      string
	DatabaseURI        string
	MongoURI           string
	MongoDatabase      string
	StoreRetryAttempts int
	StoreRetryBackoff  time.Duration

	RedisAddr      string
	RedisPassword  string
	IdempotencyTTL time.Duration

	AMQPURL            string
	AMQPExchange       string
	EventWorkers       int
	EventBuffer        int
	EventRetryInterval time.Duration

	PaymentGatewayAddress string

	AuthStrategy  string
	JWTSecret     string
	TokenTTL      time.Duration
	TokenIssuer   string
	AuthRateLimit float64
	AuthRateBurst int
	AdminEmail    string
	AdminPassword string

	LogLevel string
	LogFile  string

	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

const (
	defaultRunAddress         = ":8080"
	defaultRequestTimeout     = 5 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultStorageDriver      = StoragePostgres
	defaultMongoDatabase      = "storefront"
	defaultStoreRetryAttempts = 3
	defaultStoreRetryBackoff  = 50 * time.Millisecond
	defaultIdempotencyTTL     = 24 * time.Hour
	defaultAMQPExchange       = "storefront.orders"
	defaultEventWorkers       = 2
	defaultEventBuffer        = 256
	defaultEventRetryInterval = 5 * time.Second
	defaultAuthStrategy       = AuthStrategyJWT
	defaultJWTSecret          = "change-me-in-production"
	defaultTokenTTL           = 24 * time.Hour
	defaultTokenIssuer        = "storefront"
	defaultAuthRateLimit      = 5.0
	defaultAuthRateBurst      = 10
	defaultLogLevel           = "info"
	defaultTaxRate            = "0.18"
	defaultFreeShipping       = "500"
	defaultShippingFee        = "50"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	k := koanf.New(".")
	if path := getString(lookup, "CONFIG_FILE", ""); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", k.String("server.address")),
		RequestTimeout:  getDuration(lookup, "REQUEST_TIMEOUT", k.Duration("server.request_timeout")),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", k.Duration("server.shutdown_timeout")),

		StorageDriver:      getString(lookup, "STORAGE_DRIVER", k.String("storage.driver")),
		DatabaseURI:        getString(lookup, "DATABASE_URI", k.String("storage.postgres.dsn")),
		MongoURI:           getString(lookup, "MONGO_URI", k.String("storage.mongo.uri")),
		MongoDatabase:      getString(lookup, "MONGO_DATABASE", k.String("storage.mongo.database")),
		StoreRetryAttempts: getInt(lookup, "STORE_RETRY_ATTEMPTS", k.Int("storage.retry.attempts")),
		StoreRetryBackoff:  getDuration(lookup, "STORE_RETRY_BACKOFF", k.Duration("storage.retry.backoff")),

		RedisAddr:      getString(lookup, "REDIS_ADDR", k.String("redis.addr")),
		RedisPassword:  getString(lookup, "REDIS_PASSWORD", k.String("redis.password")),
		IdempotencyTTL: getDuration(lookup, "IDEMPOTENCY_TTL", k.Duration("redis.idempotency_ttl")),

		AMQPURL:            getString(lookup, "AMQP_URL", k.String("rabbitmq.url")),
		AMQPExchange:       getString(lookup, "AMQP_EXCHANGE", k.String("rabbitmq.exchange")),
		EventWorkers:       getInt(lookup, "EVENT_WORKERS", k.Int("events.workers")),
		EventBuffer:        getInt(lookup, "EVENT_BUFFER", k.Int("events.buffer")),
		EventRetryInterval: getDuration(lookup, "EVENT_RETRY_INTERVAL", k.Duration("events.retry_interval")),

		PaymentGatewayAddress: getString(lookup, "PAYMENT_GATEWAY_ADDRESS", k.String("payment.gateway_address")),

		AuthStrategy:  getString(lookup, "AUTH_STRATEGY", k.String("auth.strategy")),
		JWTSecret:     getString(lookup, "JWT_SECRET", k.String("auth.secret")),
		TokenTTL:      getDuration(lookup, "TOKEN_TTL", k.Duration("auth.token_ttl")),
		TokenIssuer:   getString(lookup, "TOKEN_ISSUER", k.String("auth.issuer")),
		AuthRateLimit: getFloat(lookup, "AUTH_RATE_LIMIT", k.Float64("auth.rate_limit")),
		AuthRateBurst: getInt(lookup, "AUTH_RATE_BURST", k.Int("auth.rate_burst")),
		AdminEmail:    getString(lookup, "ADMIN_EMAIL", k.String("admin.email")),
		AdminPassword: getString(lookup, "ADMIN_PASSWORD", k.String("admin.password")),

		LogLevel: getString(lookup, "LOG_LEVEL", k.String("log.level")),
		LogFile:  getString(lookup, "LOG_FILE", k.String("log.file")),
	}
	applyDefaults(cfg)

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		requestTimeoutStr  = cfg.RequestTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		taxRateStr         = getString(lookup, "TAX_RATE", stringOr(k.String("pricing.tax_rate"), defaultTaxRate))
		freeShippingStr    = getString(lookup, "FREE_SHIPPING_THRESHOLD", stringOr(k.String("pricing.free_shipping_threshold"), defaultFreeShipping))
		shippingFeeStr     = getString(lookup, "SHIPPING_FEE", stringOr(k.String("pricing.shipping_fee"), defaultShippingFee))
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "Storage driver: postgres, mongo or memory")
	fs.StringVar(&cfg.MongoURI, "mongo-uri", cfg.MongoURI, "MongoDB connection URI")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for idempotency keys")
	fs.StringVar(&cfg.AMQPURL, "amqp", cfg.AMQPURL, "RabbitMQ URL for order events")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.AuthStrategy, "auth-strategy", cfg.AuthStrategy, "Token strategy: jwt or hmac")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.IntVar(&cfg.EventWorkers, "event-workers", cfg.EventWorkers, "Number of concurrent event publishers")
	fs.StringVar(&requestTimeoutStr, "request-timeout", requestTimeoutStr, "Deadline applied to every request")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&taxRateStr, "tax-rate", taxRateStr, "Tax rate applied to order subtotal")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.RequestTimeout, err = time.ParseDuration(requestTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid request timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.TaxRate, err = decimal.NewFromString(taxRateStr); err != nil {
		return nil, fmt.Errorf("invalid tax rate: %w", err)
	}
	if cfg.FreeShippingThreshold, err = decimal.NewFromString(freeShippingStr); err != nil {
		return nil, fmt.Errorf("invalid free shipping threshold: %w", err)
	}
	if cfg.ShippingFee, err = decimal.NewFromString(shippingFeeStr); err != nil {
		return nil, fmt.Errorf("invalid shipping fee: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = defaultStorageDriver
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = defaultMongoDatabase
	}
	if cfg.StoreRetryAttempts <= 0 {
		cfg.StoreRetryAttempts = defaultStoreRetryAttempts
	}
	if cfg.StoreRetryBackoff <= 0 {
		cfg.StoreRetryBackoff = defaultStoreRetryBackoff
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}
	if cfg.AMQPExchange == "" {
		cfg.AMQPExchange = defaultAMQPExchange
	}
	if cfg.EventWorkers <= 0 {
		cfg.EventWorkers = defaultEventWorkers
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}
	if cfg.EventRetryInterval <= 0 {
		cfg.EventRetryInterval = defaultEventRetryInterval
	}
	if cfg.AuthStrategy == "" {
		cfg.AuthStrategy = defaultAuthStrategy
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.TokenIssuer == "" {
		cfg.TokenIssuer = defaultTokenIssuer
	}
	if cfg.AuthRateLimit <= 0 {
		cfg.AuthRateLimit = defaultAuthRateLimit
	}
	if cfg.AuthRateBurst <= 0 {
		cfg.AuthRateBurst = defaultAuthRateBurst
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURI == "" {
			return fmt.Errorf("database URI must be provided")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("mongo URI must be provided")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	if c.AuthStrategy != AuthStrategyJWT && c.AuthStrategy != AuthStrategyHMAC {
		return fmt.Errorf("unknown auth strategy %q", c.AuthStrategy)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.TaxRate.IsNegative() || c.FreeShippingThreshold.IsNegative() || c.ShippingFee.IsNegative() {
		return fmt.Errorf("pricing values must not be negative")
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("admin email and password must be provided together")
	}

	return nil
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
