package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const devSessionSecret = "dev-secret-change-in-production"

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	DatabaseDSN    string
	SessionSecret  string
	TokenExpiry    time.Duration
	SessionTTL     time.Duration
	CopyAckDelay   time.Duration
	Clipboard      string
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
	DefaultsFile   string
}

func Load() Config {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseDSN:    getEnv("DATABASE_DSN", ""),
		SessionSecret:  getEnv("SESSION_SECRET", devSessionSecret),
		TokenExpiry:    getDuration("SESSION_TOKEN_EXPIRY", 24*time.Hour),
		SessionTTL:     getDuration("SESSION_TTL", 30*time.Minute),
		CopyAckDelay:   getDuration("COPY_ACK_DELAY", 2*time.Second),
		Clipboard:      getEnv("CLIPBOARD", "none"),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 20),
		AllowedOrigins: getList("ALLOWED_ORIGINS"),
		DefaultsFile:   getEnv("DEFAULTS_FILE", ""),
	}

	if cfg.Env == "production" && cfg.SessionSecret == devSessionSecret {
		slog.Error("SESSION_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("ignoring invalid duration", "key", key, "value", v)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid integer", "key", key, "value", v)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		slog.Warn("ignoring invalid number", "key", key, "value", v)
		return fallback
	}
	return f
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
