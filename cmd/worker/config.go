package main

import (
	"log"
	"os"

	"aksara-bali-backend/internal/config"
)

// Config holds worker-only settings; the rest comes from config.Load()
type Config struct {
	Redis       config.RedisConfig
	Reconcile   config.ReconcileConfig
	Concurrency int
	HealthAddr  string
}

// loadConfig derives worker settings from the application config
func loadConfig(app *config.Config) *Config {
	cfg := &Config{
		Redis:       app.Redis,
		Reconcile:   app.Reconcile,
		Concurrency: 2,
		HealthAddr:  getEnv("WORKER_HEALTH_ADDR", ":9999"),
	}

	log.Printf("[Config] Redis: %s, Reconcile cron: %q (prune=%t)",
		cfg.Redis.Host, cfg.Reconcile.Cron, cfg.Reconcile.Prune)

	return cfg
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
