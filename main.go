package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"todo-app/backend/internal/auth"
	"todo-app/backend/internal/cache"
	"todo-app/backend/internal/config"
	"todo-app/backend/internal/handlers"
	"todo-app/backend/internal/middleware"
	"todo-app/backend/internal/monitoring"
	"todo-app/backend/internal/repositories"
	"todo-app/backend/internal/services"
	"todo-app/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Application holds all application dependencies and state
type Application struct {
	Config   *config.Config
	DB       *gorm.DB
	Cache    cache.Cache
	Redis    *redis.Client
	Identity auth.Identity
	Metrics  *monitoring.Collector
	Router   *gin.Engine
	Server   *http.Server
	Worker   *worker.Worker
	JobQueue *worker.JobQueue

	// Services
	TodoService    services.TodoService
	AuthService    services.AuthService
	ProfileService services.ProfileService

	tickerStop chan struct{}
}

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startWorker()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config:     cfg,
		Metrics:    monitoring.NewCollector(),
		tickerStop: make(chan struct{}),
	}

	log.Println("🚀 Initializing Todo Backend...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)
	log.Printf("🔐 Auth provider: %s", cfg.Auth.Provider)

	dbCfg := repositories.NewDatabaseConfig()
	db, err := dbCfg.Connect()
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.DB = db

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	log.Println("✅ Database connected and configured")

	migrationConfig := &repositories.MigrationConfig{
		MigrationsPath: "file://migrations",
		DBName:         cfg.Database.Name,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}

	if err := repositories.RunMigrations(db, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis unavailable: %v (continuing with memory cache only)", err)
		redisClient = nil
	} else {
		app.Redis = redisClient
		log.Println("✅ Redis connected")
	}

	if redisClient != nil {
		redisCache := cache.NewRedisCache(&cache.CacheConfig{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		app.Cache = cache.NewMultiLevelCache(redisCache)
		log.Println("✅ Multi-level cache initialized (Memory L1 + Redis L2)")
	} else {
		app.Cache = cache.NewMemoryCache()
		log.Println("✅ Memory cache initialized")
	}

	identity, err := auth.NewIdentity(cfg)
	if err != nil {
		return nil, fmt.Errorf("identity setup failed: %w", err)
	}
	app.Identity = identity

	app.AuthService = services.NewAuthService(cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, cfg.Auth.BCryptCost)
	app.ProfileService = services.NewProfileService()

	todoServiceImpl := services.NewTodoService()
	if app.Cache != nil {
		app.TodoService = services.NewCachedTodoService(todoServiceImpl, app.Cache)
		log.Println("✅ Cached todo service initialized")
	} else {
		app.TodoService = todoServiceImpl
		log.Println("✅ Todo service initialized")
	}

	app.Metrics.RegisterHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := app.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if app.Redis != nil {
		app.Metrics.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	log.Println("✅ All services initialized")

	return app, nil
}

func (app *Application) setupRoutes() {
	r := gin.New()

	// Global middleware stack (order matters!)
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(app.Metrics.Middleware())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.SecureHeader())

	if app.Config.RateLimit.Enabled {
		rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
		r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://host.docker.internal"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and monitoring endpoints (no auth required)
	r.GET("/health", app.Metrics.HealthHandler())
	r.GET("/ready", app.Metrics.ReadinessHandler())
	r.GET("/metrics", app.Metrics.MetricsHandler())

	api := r.Group("/api")

	// Token minting routes only exist when this service is the identity
	// provider. The external variant delegates all of this to the
	// hosted provider.
	if app.Config.Auth.Provider == config.AuthProviderJWT {
		authRoutes := api.Group("/auth")
		{
			authHandler := handlers.NewAuthHandler(app.DB, app.AuthService)
			refreshHandler := handlers.NewRefreshHandler(app.DB, app.AuthService)
			logoutHandler := handlers.NewLogoutHandler(app.DB, app.AuthService)
			registrationHandler := handlers.NewRegisterHandler(app.DB, app.AuthService)

			authRoutes.POST("/register", registrationHandler.Registration)
			authRoutes.POST("/login", authHandler.Token)
			authRoutes.POST("/refresh", refreshHandler.Refresh)
			authRoutes.POST("/logout", logoutHandler.Logout)
		}
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.Auth(app.Identity))
	{
		protected.GET("/check-auth", handlers.CheckAuth)

		profileHandler := handlers.NewProfileHandler(app.DB, app.ProfileService)
		protected.GET("/profile/check", profileHandler.CheckProfile)
		protected.GET("/profile", profileHandler.GetProfile)
		protected.POST("/profile", profileHandler.CompleteProfile)

		todoHandler := handlers.NewTodoHandler(app.DB, app.TodoService)
		todoRoutes := protected.Group("/todos")
		{
			todoRoutes.GET("", todoHandler.ListTodos)
			todoRoutes.POST("", todoHandler.CreateTodo)
			todoRoutes.GET("/:id", todoHandler.GetTodoByID)
			todoRoutes.PATCH("/:id", todoHandler.UpdateTodo)
			todoRoutes.DELETE("/:id", todoHandler.DeleteTodo)
		}
	}

	app.Router = r
}

// startWorker runs the maintenance worker when Redis is available and
// schedules the recurring cleanup jobs.
func (app *Application) startWorker() {
	if app.Redis == nil {
		log.Println("⚠️  Worker disabled (no Redis connection)")
		return
	}

	app.Worker = worker.NewWorker(worker.WorkerConfig{
		RedisClient:  app.Redis,
		Concurrency:  app.Config.Worker.Concurrency,
		PollInterval: app.Config.Worker.PollInterval,
		Queues:       app.Config.Worker.Queues,
	})
	app.Worker.RegisterHandler(worker.JobTypeTokenCleanup, worker.NewTokenCleanupHandler(app.DB))
	app.Worker.RegisterHandler(worker.JobTypeCompletedSweep,
		worker.NewCompletedSweepHandler(app.DB, app.Config.Worker.CompletedMaxAge))
	app.Worker.Start(app.Config.Worker.Concurrency)

	app.JobQueue = worker.NewJobQueue(app.Redis)

	go func() {
		ticker := time.NewTicker(app.Config.Worker.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-app.tickerStop:
				return
			case <-ticker.C:
				app.enqueueMaintenanceJobs()
			}
		}
	}()

	log.Printf("✅ Worker started (concurrency %d)", app.Config.Worker.Concurrency)
}

func (app *Application) enqueueMaintenanceJobs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, jobType := range []worker.JobType{worker.JobTypeTokenCleanup, worker.JobTypeCompletedSweep} {
		id, err := uuid.NewV4()
		if err != nil {
			log.Printf("⚠️  Failed to generate job id: %v", err)
			continue
		}
		job := &worker.Job{
			ID:   id.String(),
			Type: jobType,
		}
		if err := app.JobQueue.Enqueue(ctx, "maintenance", job); err != nil {
			log.Printf("⚠️  Failed to enqueue %s: %v", jobType, err)
		}
	}
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("✅ Server stopped gracefully")
	}()

	log.Printf("🚀 Server starting on %s", addr)
	log.Printf("📊 Metrics available at http://%s/metrics", addr)
	log.Printf("💚 Health check at http://%s/health", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	close(app.tickerStop)

	if app.Worker != nil {
		app.Worker.Stop()
	}

	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	}

	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			log.Printf("⚠️  Error closing Redis: %v", err)
		}
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("⚠️  Error closing database: %v", err)
			}
		}
	}

	log.Println("✅ Cleanup complete")
}
