package config

import (
	"os"
	"strconv"

	"todoapp/internal/logger"

	"github.com/joho/godotenv"
)

// Store backend names accepted in STORE.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	AppPort     string
	Store       string
	DatabaseURL string
	SQLitePath  string
	StaticDir   string

	LogLevel string
	LogJSON  bool

	// Rate limiter (Redis-backed when RedisAddr is set, in-process otherwise)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	APIRateLimit  int
	APIRateWindow int // seconds
}

// Load reads .env (if present) and the environment. The store backend is
// inferred when STORE is unset: postgres when DATABASE_URL is set, sqlite
// otherwise.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:       getenv("APP_PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getenv("SQLITE_PATH", "./todos.db"),
		StaticDir:     getenv("STATIC_DIR", "./web"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		APIRateLimit:  getenvInt("API_RATE_LIMIT", 60),
		APIRateWindow: getenvInt("API_RATE_WINDOW_SECONDS", 60),
	}

	cfg.Store = os.Getenv("STORE")
	switch cfg.Store {
	case "":
		if cfg.DatabaseURL != "" {
			cfg.Store = StorePostgres
		} else {
			cfg.Store = StoreSQLite
		}
	case StorePostgres, StoreSQLite, StoreMemory:
	default:
		logger.Fatal("unknown STORE value", "store", cfg.Store)
	}

	if cfg.Store == StorePostgres && cfg.DatabaseURL == "" {
		logger.Fatal("STORE=postgres requires DATABASE_URL")
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
