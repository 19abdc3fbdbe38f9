package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL       string
	Port              string
	SessionSecret     string
	SessionStore      string
	RedisURL          string
	SessionTTL        time.Duration
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	DefaultPageSize   int
	MaxPageSize       int
	StaticDir         string
	Debug             bool
	LogFormat         string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables always win over it.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		logrus.Info("Loaded environment from .env")
	}

	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "data.db"),
		Port:              getEnv("PORT", "8000"),
		SessionSecret:     getEnv("SESSION_SECRET", "change-this-session-secret"),
		SessionStore:      strings.ToLower(getEnv("SESSION_STORE", "memory")),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 12*time.Hour),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin123"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		DefaultPageSize:   getEnvInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:       getEnvInt("MAX_PAGE_SIZE", 200),
		StaticDir:         getEnv("STATIC_DIR", "web/static"),
		Debug:             getEnvBool("DEBUG", false),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
	if cfg.DefaultPageSize < 1 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	return cfg
}

// ConfigureLogging applies the log level and format to the global logrus logger.
func (c *Config) ConfigureLogging() {
	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if c.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// Debugf logs a formatted message only when DEBUG is enabled
func (c *Config) Debugf(format string, v ...interface{}) {
	if c.Debug {
		logrus.Debugf(format, v...)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
