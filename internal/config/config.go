package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	ModelStore ModelStoreConfig
	MinIO      MinIOConfig
	Redis      RedisConfig
	Reconcile  ReconcileConfig
	Stats      StatsConfig
	CORS       CORSConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

// DatabaseConfig chọn driver cho Data Store.
// Pool settings nằm trong LoadDatabaseConfig (database.go).
type DatabaseConfig struct {
	Driver      string // postgres, memory
	AutoMigrate bool
}

type ModelStoreConfig struct {
	Driver         string // local, minio
	Dir            string // thư mục chứa file .obj khi Driver = local
	MaxUploadBytes int64
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string // minioadmin
	SecretKey string // minioadmin
	Bucket    string // aksara-models
	Prefix    string // optional key prefix, e.g. "3d/"
	UseSSL    bool   // false for local
}

type RedisConfig struct {
	Host         string
	Password     string
	DB           int
	QueueEnabled bool // API enqueue reconcile tasks khi side effect thất bại
}

type ReconcileConfig struct {
	Cron  string
	Prune bool
}

type StatsConfig struct {
	RecentDays int
}

type CORSConfig struct {
	AllowedOrigins []string
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	StoreLocal = "local"
	StoreMinIO = "minio"
)

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Aksara Bali Digital API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "3000"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
		},
		ModelStore: ModelStoreConfig{
			Driver:         strings.ToLower(getEnv("MODEL_STORE_DRIVER", StoreLocal)),
			Dir:            getEnv("MODEL_STORE_DIR", "./3d"),
			MaxUploadBytes: int64(getEnvInt("MODEL_MAX_UPLOAD_MB", 10)) << 20,
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "aksara-models"),
			Prefix:    getEnv("MINIO_PREFIX", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			QueueEnabled: getEnvBool("QUEUE_ENABLED", false),
		},
		Reconcile: ReconcileConfig{
			Cron:  getEnv("RECONCILE_CRON", "0 3 * * *"), // daily at 3 AM
			Prune: getEnvBool("RECONCILE_PRUNE", false),
		},
		Stats: StatsConfig{
			RecentDays: getEnvInt("STATS_RECENT_DAYS", 30),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver)
	}

	switch c.ModelStore.Driver {
	case StoreLocal:
		if c.ModelStore.Dir == "" {
			return fmt.Errorf("MODEL_STORE_DIR must be set for the local model store")
		}
	case StoreMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET must be set for the minio model store")
		}
	default:
		return fmt.Errorf("MODEL_STORE_DRIVER must be %q or %q, got %q", StoreLocal, StoreMinIO, c.ModelStore.Driver)
	}

	if c.ModelStore.MaxUploadBytes <= 0 {
		return fmt.Errorf("MODEL_MAX_UPLOAD_MB must be positive")
	}
	if c.Stats.RecentDays <= 0 {
		return fmt.Errorf("STATS_RECENT_DAYS must be positive")
	}

	// Production environment phải có credentials thật
	if c.IsProduction() {
		if c.Database.Driver == DriverPostgres && getEnv("DB_PASSWORD", "") == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.ModelStore.Driver == StoreMinIO && c.MinIO.SecretKey == "minioadmin" {
			return fmt.Errorf("MINIO_SECRET_KEY must be set in production")
		}
		if c.Database.Driver == DriverMemory {
			fmt.Println("WARNING: DB_DRIVER=memory in production - data will not survive a restart")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
