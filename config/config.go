package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Processor ProcessorConfig
	Webhook   WebhookConfig
	Redis     RedisConfig
	Sweeper   SweeperConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// ProcessorConfig points at the external payment processor's API.
// An empty APIKey switches the service to the stub provider.
type ProcessorConfig struct {
	BaseURL  string
	APIKey   string
	Currency string
	Timeout  time.Duration
}

type WebhookConfig struct {
	Secret    string
	Tolerance time.Duration
	DedupTTL  time.Duration
}

// RedisConfig backs webhook event dedup. Empty Addr falls back to the
// in-process deduper.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SweeperConfig struct {
	Interval      time.Duration
	MaxPendingAge time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8080"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  envDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: envDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "payflow:payflow@tcp(localhost:3306)/payflow?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: env("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: envDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:       env("JWT_ISSUER", "payflow"),
		},
		Processor: ProcessorConfig{
			BaseURL:  env("PROCESSOR_BASE_URL", "https://api.processor.example.com"),
			APIKey:   os.Getenv("PROCESSOR_API_KEY"),
			Currency: env("PROCESSOR_CURRENCY", "COP"),
			Timeout:  envDuration("PROCESSOR_TIMEOUT", 30*time.Second),
		},
		Webhook: WebhookConfig{
			Secret:    os.Getenv("PROCESSOR_WEBHOOK_SECRET"),
			Tolerance: envDuration("WEBHOOK_TOLERANCE", 5*time.Minute),
			DedupTTL:  envDuration("WEBHOOK_DEDUP_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Sweeper: SweeperConfig{
			Interval:      envDuration("SWEEP_INTERVAL", 10*time.Minute),
			MaxPendingAge: envDuration("PAYMENT_EXPIRY", 30*time.Minute),
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
