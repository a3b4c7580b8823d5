package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Loyalty   LoyaltyConfig
	Providers ProvidersConfig
	Poller    PollerConfig
}

// LoyaltyConfig carries the tunables of the eligibility and promotion engines.
type LoyaltyConfig struct {
	// MinHoldingUsd is the USD value a wallet must hold to qualify for
	// holding rewards.
	MinHoldingUsd decimal.Decimal
	// SnapshotHistoryLimit bounds how far back the streak reconstruction
	// looks; streaks longer than the retention window are under-estimated.
	SnapshotHistoryLimit int
	// SnapshotRetention is how long balance snapshots are kept.
	SnapshotRetention time.Duration
	// DailyCheckinPoints is awarded once per UTC day on check-in.
	DailyCheckinPoints int64
	// VerifyLockTTL bounds how long a per-member eligibility verification
	// may hold the distributed lock.
	VerifyLockTTL time.Duration
}

// ProvidersConfig configures the external balance and price sources.
type ProvidersConfig struct {
	BalanceEndpoint string
	PriceEndpoint   string
	RequestTimeout  time.Duration
	PriceCacheTTL   time.Duration
}

// PollerConfig configures the background balance poller.
type PollerConfig struct {
	Enabled   bool
	Interval  time.Duration
	BatchSize int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "arkloyalty"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "arkloyalty"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
		RedisDB:       getenvInt("REDIS_DB", 0),

		Loyalty: LoyaltyConfig{
			MinHoldingUsd:        getenvDecimal("LOYALTY_MIN_HOLDING_USD", decimal.NewFromInt(250)),
			SnapshotHistoryLimit: getenvInt("LOYALTY_SNAPSHOT_HISTORY_LIMIT", 100),
			SnapshotRetention:    getenvDuration("LOYALTY_SNAPSHOT_RETENTION", 90*24*time.Hour),
			DailyCheckinPoints:   getenvInt64("LOYALTY_DAILY_CHECKIN_POINTS", 50),
			VerifyLockTTL:        getenvDuration("LOYALTY_VERIFY_LOCK_TTL", 15*time.Second),
		},
		Providers: ProvidersConfig{
			BalanceEndpoint: strings.TrimSpace(getenv("BALANCE_PROVIDER_ENDPOINT", "")),
			PriceEndpoint:   strings.TrimSpace(getenv("PRICE_PROVIDER_ENDPOINT", "")),
			RequestTimeout:  getenvDuration("PROVIDER_REQUEST_TIMEOUT", 5*time.Second),
			PriceCacheTTL:   getenvDuration("PRICE_CACHE_TTL", 2*time.Minute),
		},
		Poller: PollerConfig{
			Enabled:   getenvBool("POLLER_ENABLED", true),
			Interval:  getenvDuration("POLLER_INTERVAL", 6*time.Hour),
			BatchSize: getenvInt("POLLER_BATCH_SIZE", 200),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil || parsed.Sign() < 0 {
		return def
	}
	return parsed
}
