// Package config provides configuration management for the campaign economics
// engine. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/fanbacker/internal/types"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Policy    PolicyConfig
	Lifecycle LifecycleConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// ClickHouseConfig holds ClickHouse configuration for the audit event store
type ClickHouseConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// CacheConfig holds read-cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// PolicyConfig holds the platform's monetary policy. Amounts are configured
// in whole rupees and held as Money.
type PolicyConfig struct {
	MinDeposit     types.Money
	MaxDeposit     types.Money
	MinInvestment  types.Money
	PlatformFeePct float64
}

// LifecycleConfig holds campaign lifecycle configuration
type LifecycleConfig struct {
	// ExpirySweepInterval is how often live campaigns past their end date
	// are swept to failed.
	ExpirySweepInterval time.Duration
}

// RateLimitConfig holds per-role API rate limits in requests per second
type RateLimitConfig struct {
	ArtistRPS    int
	InvestorRPS  int
	AnonymousRPS int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional, environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "fanbacker"),
				User:           getEnv("POSTGRES_USER", "fanbacker"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 100),
			},
			ClickHouse: ClickHouseConfig{
				Host:     getEnv("CLICKHOUSE_HOST", "localhost"),
				Port:     getEnv("CLICKHOUSE_PORT", "9000"),
				Database: getEnv("CLICKHOUSE_DB", "fanbacker"),
				User:     getEnv("CLICKHOUSE_USER", "default"),
				Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
			},
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("CACHE_TTL", 20*time.Second),
		},
		Policy: PolicyConfig{
			MinDeposit:     getEnvAsRupees("POLICY_MIN_DEPOSIT", 100),
			MaxDeposit:     getEnvAsRupees("POLICY_MAX_DEPOSIT", 100000),
			MinInvestment:  getEnvAsRupees("POLICY_MIN_INVESTMENT", 1000),
			PlatformFeePct: getEnvAsFloat("POLICY_PLATFORM_FEE_PCT", 5),
		},
		Lifecycle: LifecycleConfig{
			ExpirySweepInterval: getEnvAsDuration("LIFECYCLE_EXPIRY_SWEEP_INTERVAL", 10*time.Minute),
		},
		RateLimit: RateLimitConfig{
			ArtistRPS:    getEnvAsInt("RATE_LIMIT_ARTIST_RPS", 20),
			InvestorRPS:  getEnvAsInt("RATE_LIMIT_INVESTOR_RPS", 20),
			AnonymousRPS: getEnvAsInt("RATE_LIMIT_ANONYMOUS_RPS", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := config.Policy.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (p PolicyConfig) validate() error {
	if p.MinDeposit <= 0 || p.MaxDeposit < p.MinDeposit {
		return fmt.Errorf("deposit policy is inconsistent: min=%s max=%s", p.MinDeposit, p.MaxDeposit)
	}
	if p.MinInvestment <= 0 {
		return fmt.Errorf("minimum investment must be positive, got %s", p.MinInvestment)
	}
	if p.PlatformFeePct < 0 || p.PlatformFeePct > 100 {
		return fmt.Errorf("platform fee must be within [0,100], got %v", p.PlatformFeePct)
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
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsRupees gets an environment variable holding a rupee amount as Money
func getEnvAsRupees(key string, defaultRupees float64) types.Money {
	return types.MoneyFromRupees(getEnvAsFloat(key, defaultRupees))
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
