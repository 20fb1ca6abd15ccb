package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	// APIBaseURL is the root of the remote EduMaster API that owns all
	// business logic (persistence, grading, payments, authorization).
	APIBaseURL string
	APITimeout time.Duration
	// RedisURL backs the browser-session store. Empty means an in-process
	// memory store (dev default, sessions lost on restart).
	RedisURL     string
	SessionTTL   time.Duration
	CookieSecure bool
	// DefaultExamMinutes is the countdown fallback when the server sends no
	// usable remaining-time data and the exam carries no duration.
	DefaultExamMinutes int
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "pretty"),
		APIBaseURL:         getEnv("API_BASE_URL", "https://edu-master-delta.vercel.app"),
		APITimeout:         time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
		RedisURL:           getEnv("REDIS_URL", ""),
		SessionTTL:         time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),
		DefaultExamMinutes: getEnvInt("DEFAULT_EXAM_MINUTES", 60),
		AllowedOrigins:     parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
