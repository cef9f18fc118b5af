package config

import "os"

type Config struct {
	// Port the HTTP server listens on.
	Port string
	// DatabaseURL selects the PostgreSQL backend; empty means the in-memory
	// store.
	DatabaseURL string
	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string
	// Seed controls baseline catalog seeding at startup.
	Seed bool
}

func Load() Config {
	cfg := Config{
		Port:        os.Getenv("PORT"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		Seed:        os.Getenv("SEED") != "false",
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg
}
