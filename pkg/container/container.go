package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"aksara-bali-backend/internal/config"
	aksaraHandler "aksara-bali-backend/internal/domains/aksara/handler"
	aksaraRepo "aksara-bali-backend/internal/domains/aksara/repository"
	aksaraService "aksara-bali-backend/internal/domains/aksara/service"
	"aksara-bali-backend/internal/infrastructure/database"
	"aksara-bali-backend/internal/infrastructure/metrics"
	"aksara-bali-backend/internal/infrastructure/queue"
	"aksara-bali-backend/internal/infrastructure/storage"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa tất cả dependencies của application.
// Thứ tự init: Config → DB → Model store → Metrics → Queue → Repository → Service → Handlers
type Container struct {
	// Infrastructure
	Config  *config.Config
	DB      *database.PostgresDB // nil khi DB_DRIVER=memory
	Store   storage.ModelStore
	Metrics *metrics.Metrics
	Queue   *queue.Client       // nil khi QUEUE_ENABLED=false
	Broker  *queue.BrokerHealth // nil khi QUEUE_ENABLED=false

	// Repository
	AksaraRepo aksaraRepo.Repository

	// Service
	AksaraService *aksaraService.Service

	// Handlers
	AksaraHandler *aksaraHandler.Handler
	SystemHandler *aksaraHandler.SystemHandler
}

// NewContainer build toàn bộ dependency graph từ environment
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewContainerWithConfig(cfg)
}

// NewContainerWithConfig - như NewContainer nhưng config đã được load sẵn
func NewContainerWithConfig(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 1: DATA STORE
	// ========================================
	if err := c.initDatabase(); err != nil {
		c.Cleanup()
		return nil, err
	}

	// ========================================
	// STEP 2: FILE STORE
	// ========================================
	if err := c.initModelStore(); err != nil {
		c.Cleanup()
		return nil, err
	}

	// ========================================
	// STEP 3: METRICS + QUEUE
	// ========================================
	m, err := metrics.NewDefaultMetrics()
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	c.Metrics = m

	if cfg.Redis.QueueEnabled {
		c.Queue = queue.NewClient(queue.RedisOpt(cfg.Redis))
		c.Broker = queue.NewBrokerHealth(cfg.Redis)
		log.Printf("✅ Queue client ready (redis: %s)", cfg.Redis.Host)
	} else {
		log.Println("⚠️  Queue disabled - failed model side effects will only be logged")
	}

	// ========================================
	// STEP 4: SERVICE + HANDLERS
	// ========================================
	c.initServices()
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initDatabase() error {
	if c.Config.Database.Driver == config.DriverMemory {
		log.Println("🗄️  Using in-memory data store")
		c.AksaraRepo = aksaraRepo.NewMemoryRepository()
		return nil
	}

	log.Println("🗄️  Connecting to PostgreSQL...")
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	if c.Config.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.SQLDB()); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	c.AksaraRepo = aksaraRepo.NewPostgresRepository(db.Pool)
	log.Println("✅ Database connected")
	return nil
}

func (c *Container) initModelStore() error {
	switch c.Config.ModelStore.Driver {
	case config.StoreMinIO:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := storage.NewMinIOModelStore(ctx, c.Config.MinIO)
		if err != nil {
			return fmt.Errorf("failed to init minio model store: %w", err)
		}
		c.Store = store
		log.Printf("✅ Model store: minio (bucket: %s)", c.Config.MinIO.Bucket)
	default:
		store, err := storage.NewLocalModelStore(c.Config.ModelStore.Dir)
		if err != nil {
			return fmt.Errorf("failed to init local model store: %w", err)
		}
		c.Store = store
		log.Printf("✅ Model store: local (%s)", c.Config.ModelStore.Dir)
	}
	return nil
}

func (c *Container) initServices() {
	// interface nil thật sự, không phải (*queue.Client)(nil)
	var reconciler aksaraService.ReconcileEnqueuer
	if c.Queue != nil {
		reconciler = c.Queue
	}

	c.AksaraService = aksaraService.NewService(
		c.AksaraRepo,
		c.Store,
		c.Metrics,
		reconciler,
		c.Config.Stats.RecentDays,
	)
}

func (c *Container) initHandlers() {
	c.AksaraHandler = aksaraHandler.NewHandler(
		c.AksaraService,
		c.Config.ModelStore.MaxUploadBytes,
		c.Config.IsDevelopment(),
	)

	var broker aksaraHandler.Pinger
	if c.Broker != nil {
		broker = c.Broker
	}
	c.SystemHandler = aksaraHandler.NewSystemHandler(
		c.AksaraService,
		broker,
		c.Config.App.Name,
		c.Config.App.Version,
	)

	if c.DB != nil {
		db := c.DB
		c.SystemHandler.WithPoolStats(func() (interface{}, error) {
			return db.Stats()
		})
	}
}

// Cleanup dọn dẹp resources khi shutdown, theo thứ tự ngược lại lúc init
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.Broker != nil {
		if err := c.Broker.Close(); err != nil {
			log.Printf("⚠️  Failed to close redis health client: %v", err)
		}
	}

	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Printf("⚠️  Failed to close queue client: %v", err)
		} else {
			log.Println("✅ Queue client closed")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("⚠️  Failed to close database: %v", err)
		}
	}

	log.Println("✅ Container cleanup completed")
}
