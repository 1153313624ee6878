package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET and
	// ADMIN_PASSWORD must be set and not the dev defaults.
	Env string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// AuthRequired gates the generation endpoints behind login. The first
	// version of the tool shipped without a login screen; keep that mode
	// reachable for local use.
	AuthRequired bool

	JWTSecret string

	// JWTExpireMinutes is the session token lifetime in minutes (default 30).
	JWTExpireMinutes int

	// AdminPassword seeds the default admin record on first run.
	AdminPassword string

	// StoreBackend is "file" (default) or "postgres".
	StoreBackend string
	// StoreFile is the JSON credential file used by the file backend.
	StoreFile string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// Completion service settings.
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	CompletionTimeout int // seconds
	Temperature       float64
	MaxTokens         int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// CORSAllowedOrigins is a comma-separated list of origins allowed for CORS.
	// When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string
}

const (
	devJWTSecret     = "supersecretkey"
	devAdminPassword = "admin"
)

func Load() Config {
	// Optional .env for local development; missing file is not an error.
	_ = godotenv.Load()

	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "dev"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AuthRequired:     getEnvBool("AUTH_REQUIRED", true),
		JWTSecret:        getEnv("JWT_SECRET", devJWTSecret),
		JWTExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 30),
		AdminPassword:    getEnv("ADMIN_PASSWORD", devAdminPassword),

		StoreBackend: getEnv("STORE_BACKEND", "file"),
		StoreFile:    getEnv("STORE_FILE", "users.json"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "replydesk"),
		DBUser: getEnv("DB_USER", "replydesk"),
		DBPass: getEnv("DB_PASS", "replydesk"),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		CompletionTimeout: getEnvInt("COMPLETION_TIMEOUT_SECONDS", 60),
		Temperature:       getEnvFloat("TEMPERATURE", 0.7),
		MaxTokens:         getEnvInt("MAX_TOKENS", 700),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}

	if cfg.Env == "prod" {
		if cfg.JWTSecret == devJWTSecret {
			log.Fatal("JWT_SECRET must be set in prod")
		}
		if cfg.AdminPassword == devAdminPassword {
			log.Fatal("ADMIN_PASSWORD must be set in prod")
		}
	}

	return cfg
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
