package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"

	MessagingMemory = "memory"
	MessagingScylla = "scylla"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	LogLevel           string
	HTTPAddr           string
	PublicURL          string
	CORSOrigins        []string
	FixturesPath       string
	StorageMode        string
	MongoURI           string
	MongoDB            string
	MessagingStore     string
	ScyllaHosts        []string
	ScyllaKeyspace     string
	RedisURL           string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaGroupID       string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	S3Endpoint         string
	S3PublicEndpoint   string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3UseSSL           bool
	JWTSecret          string
	JWTIssuer          string
	SessionTTL         time.Duration
	LinkTTL            time.Duration
	ReminderInterval   time.Duration
	ServiceFeeRate     decimal.Decimal
	TaxRate            decimal.Decimal
	GRPCHealthAddr     string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		PublicURL:        strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:5173"), "/"),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		FixturesPath:     os.Getenv("LISTINGS_FIXTURES"),
		StorageMode:      strings.ToLower(getEnv("STORAGE_MODE", StorageMemory)),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "addisstay"),
		MessagingStore:   strings.ToLower(getEnv("MESSAGING_STORE", MessagingMemory)),
		ScyllaHosts:      splitList(os.Getenv("SCYLLA_HOSTS")),
		ScyllaKeyspace:   getEnv("SCYLLA_KEYSPACE", "addisstay"),
		RedisURL:         os.Getenv("REDIS_URL"),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "addisstay-notifications"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3PublicEndpoint: getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:      getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:         getEnv("S3_BUCKET", "addisstay-photos"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTIssuer:        getEnv("JWT_ISSUER", "addisstay"),
		GRPCHealthAddr:   os.Getenv("GRPC_HEALTH_ADDR"),
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"IDEMP_TTL", 168 * time.Hour, &cfg.IdempotencyTTL},
		{"OUTBOX_POLL_INTERVAL", 500 * time.Millisecond, &cfg.OutboxPollInterval},
		{"SESSION_TTL", 7 * 24 * time.Hour, &cfg.SessionTTL},
		{"ACTION_LINK_TTL", time.Hour, &cfg.LinkTTL},
		{"REMINDER_INTERVAL", 15 * time.Minute, &cfg.ReminderInterval},
	}
	for _, d := range durations {
		v, err := parseDurationEnv(d.key, d.def)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	var err error
	if cfg.ServiceFeeRate, err = parseRateEnv("SERVICE_FEE_RATE", "0.14"); err != nil {
		return Config{}, err
	}
	if cfg.TaxRate, err = parseRateEnv("TAX_RATE", "0.12"); err != nil {
		return Config{}, err
	}

	useSSL, err := parseBoolEnv("S3_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg.S3UseSSL = useSSL
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsDev reports whether the process runs on a developer machine.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "local" || c.Env == "test"
}

func (c *Config) validate() error {
	switch c.StorageMode {
	case StorageMemory:
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return fmt.Errorf("invalid STORAGE_MODE %q", c.StorageMode)
	}
	switch c.MessagingStore {
	case MessagingMemory:
	case MessagingScylla:
		if len(c.ScyllaHosts) == 0 {
			return fmt.Errorf("SCYLLA_HOSTS is required when MESSAGING_STORE=scylla")
		}
	default:
		return fmt.Errorf("invalid MESSAGING_STORE %q", c.MessagingStore)
	}
	if len(c.KafkaBrokers) > 0 && c.StorageMode != StorageMongo {
		return fmt.Errorf("KAFKA_BROKERS requires STORAGE_MODE=mongo")
	}
	if c.JWTSecret == "" {
		if !c.IsDev() {
			return fmt.Errorf("JWT_SECRET is required")
		}
		c.JWTSecret = "addisstay-dev-secret"
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseRateEnv(key, def string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, def))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s rate: %w", key, err)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s must be between 0 and 1", key)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
