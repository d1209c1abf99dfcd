package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Sessions
	SessionBackend    string // "memory" | "redis"
	RedisURL          string
	SessionIdle       time.Duration // idle timeout before re-authentication
	SessionRotate     time.Duration // session id rotation interval
	SessionCookieName string
	CookieSecure      bool

	// Activation / password-reset tokens
	AuthSecret string

	// Justification documents
	UploadDir      string
	MaxUploadBytes int64
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt64(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getSeconds(k string, def int64) time.Duration {
	return time.Duration(getInt64(k, def)) * time.Second
}

func Load() *Config {
	// optional .env for local development
	_ = godotenv.Load()

	return &Config{
		AppPort: get("APP_PORT", "8080"),
		AppEnv:  get("APP_ENV", "dev"),

		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", "postgres"),
		DBName:     get("DB_NAME", "schooldesk"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		SessionBackend:    get("SESSION_BACKEND", "memory"),
		RedisURL:          get("REDIS_URL", "redis://localhost:6379/0"),
		SessionIdle:       getSeconds("SESSION_IDLE_SECONDS", 1800),
		SessionRotate:     getSeconds("SESSION_ROTATE_SECONDS", 600),
		SessionCookieName: get("SESSION_COOKIE_NAME", "schooldesk_session"),
		CookieSecure:      get("COOKIE_SECURE", "false") == "true",

		AuthSecret: get("AUTH_SECRET", "dev-secret"),

		UploadDir:      get("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", 5<<20),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}
