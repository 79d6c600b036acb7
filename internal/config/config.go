// Package config provides configuration management for the tracker client.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for the persisted state blobs
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	API       APIConfig
	Storage   StorageConfig
	Transport TransportConfig
	Economy   EconomyConfig
	Ads       AdsConfig
	Mock      MockConfig
	Logging   LoggingConfig
	Locale    LocaleConfig
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	UseMock bool // start the in-process mock backend and point BaseURL at it
}

// StorageConfig selects where the state snapshots live
type StorageConfig struct {
	Backend   string
	KeyPrefix string
	Redis     RedisConfig
	Postgres  PostgresConfig
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
	MigrationsPath string
}

// URL returns the connection URL used by golang-migrate
func (p PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.Database)
}

// TransportConfig holds resilience settings for the HTTP transport
type TransportConfig struct {
	RequestsPerSecond float64
	Burst             int
	RetryAttempts     int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
	BreakerFailures   int
	BreakerTimeout    time.Duration
}

// EconomyConfig holds the client side coin rules
type EconomyConfig struct {
	TrackerCost      int
	DefaultFrequency int
}

// AdsConfig holds rewarded-ad settings
type AdsConfig struct {
	AdUnitID    string
	WatchLength time.Duration // simulated playback length for the CLI player
}

// MockConfig holds settings for the mock backend
type MockConfig struct {
	Host          string
	Port          string
	Latency       time.Duration
	InitialCoins  int
	AdRewardCoins int
	AdCooldown    time.Duration
	PushDailyMax  int
	RPS           int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LocaleConfig holds the UI language
type LocaleConfig struct {
	Language string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:3000/api"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 10*time.Second),
			UseMock: getEnvAsBool("API_USE_MOCK", true),
		},
		Storage: StorageConfig{
			Backend:   strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory)),
			KeyPrefix: getEnv("STORAGE_KEY_PREFIX", "zhuiying:"),
			Redis: RedisConfig{
				Host:     getEnv("REDIS_HOST", "localhost"),
				Port:     getEnv("REDIS_PORT", "6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),
			},
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "zhuiying"),
				User:           getEnv("POSTGRES_USER", "zhuiying"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 4),
				MigrationsPath: getEnv("POSTGRES_MIGRATIONS_PATH", "migrations"),
			},
		},
		Transport: TransportConfig{
			RequestsPerSecond: getEnvAsFloat("TRANSPORT_RPS", 10),
			Burst:             getEnvAsInt("TRANSPORT_BURST", 5),
			RetryAttempts:     getEnvAsInt("TRANSPORT_RETRY_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("TRANSPORT_RETRY_INITIAL_DELAY", 200*time.Millisecond),
			RetryMaxDelay:     getEnvAsDuration("TRANSPORT_RETRY_MAX_DELAY", 2*time.Second),
			BreakerFailures:   getEnvAsInt("TRANSPORT_BREAKER_FAILURES", 5),
			BreakerTimeout:    getEnvAsDuration("TRANSPORT_BREAKER_TIMEOUT", 30*time.Second),
		},
		Economy: EconomyConfig{
			TrackerCost:      getEnvAsInt("TRACKER_COST", 10),
			DefaultFrequency: getEnvAsInt("TRACKER_DEFAULT_FREQUENCY", 30),
		},
		Ads: AdsConfig{
			AdUnitID:    getEnv("AD_UNIT_ID", "your-ad-unit-id"),
			WatchLength: getEnvAsDuration("AD_WATCH_LENGTH", 2*time.Second),
		},
		Mock: MockConfig{
			Host:          getEnv("MOCK_HOST", "127.0.0.1"),
			Port:          getEnv("MOCK_PORT", "3000"),
			Latency:       getEnvAsDuration("MOCK_LATENCY", 300*time.Millisecond),
			InitialCoins:  getEnvAsInt("MOCK_INITIAL_COINS", 100),
			AdRewardCoins: getEnvAsInt("MOCK_AD_REWARD_COINS", 10),
			AdCooldown:    getEnvAsDuration("MOCK_AD_COOLDOWN", 30*time.Minute),
			PushDailyMax:  getEnvAsInt("MOCK_PUSH_DAILY_LIMIT", 10),
			RPS:           getEnvAsInt("MOCK_RPS", 50),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Locale: LocaleConfig{
			Language: getEnv("APP_LANGUAGE", "zh_CN"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that would make the client misbehave
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageRedis, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Economy.TrackerCost < 0 {
		return fmt.Errorf("tracker cost cannot be negative")
	}
	if c.Economy.DefaultFrequency <= 0 {
		return fmt.Errorf("default frequency must be positive")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
