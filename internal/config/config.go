package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	MongoURI string
	MongoDB  string

	RedisURL string

	KafkaBrokers []string
	KafkaTopic   string

	OSS OSSConfig

	Background BackgroundConfig
}

// OSSConfig configures the object store used for question images.
type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	PublicBaseURL   string
}

// Enabled reports whether an object store is configured. Without one the
// service still runs but rejects inline image uploads.
func (c OSSConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// BackgroundConfig sizes the worker pool for post-write maintenance.
type BackgroundConfig struct {
	Workers   int
	QueueSize int
}

// LoadConfig reads configuration from the environment, loading .env first
// when present (local development).
func LoadConfig() (*Config, error) {
	// Missing .env is fine; production injects env vars directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		MongoURI: getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGODB_DB", "quizbank"),

		RedisURL: getEnv("REDIS_URL", ""),

		KafkaTopic: getEnv("KAFKA_TOPIC", "quizbank.events"),

		OSS: OSSConfig{
			Endpoint:        getEnv("OSS_ENDPOINT", ""),
			AccessKeyID:     getEnv("OSS_ACCESS_KEY_ID", ""),
			AccessKeySecret: getEnv("OSS_ACCESS_KEY_SECRET", ""),
			Bucket:          getEnv("OSS_BUCKET", ""),
			PublicBaseURL:   getEnv("OSS_PUBLIC_BASE_URL", ""),
		},

		Background: BackgroundConfig{
			Workers:   getEnvInt("BACKGROUND_WORKERS", 4),
			QueueSize: getEnvInt("BACKGROUND_QUEUE_SIZE", 128),
		},
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.OSS.Enabled() && (cfg.OSS.AccessKeyID == "" || cfg.OSS.AccessKeySecret == "") {
		return nil, fmt.Errorf("OSS_ACCESS_KEY_ID and OSS_ACCESS_KEY_SECRET are required when OSS is configured")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
