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

	"github.com/gin-gonic/gin"

	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/internal/handler"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/internal/middleware"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/internal/repository"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/internal/service"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/pkg/config"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/pkg/database"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/pkg/logger"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/pkg/redis"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/pkg/telemetry"
)

const serviceName = "courtbook-auth"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting auth service...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	if err := repository.Migrate(ctx, db.Pool()); err != nil {
		appLog.Fatal(fmt.Sprintf("Database migration failed: %v", err))
	}

	// Initialize Redis connection
	redisCfg := &redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}
	redisClient, err := redis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info(fmt.Sprintf("Redis connected (%s)", redisCfg.Addr()))

	// Initialize repositories
	userRepo := repository.NewPostgresUserRepository(db.Pool())
	sessionRepo := repository.NewRedisSessionRepository(redisClient)

	// Optional Kafka event publisher
	var events service.EventPublisher
	if cfg.Kafka.Enabled {
		publisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Kafka.ClientID,
			Source:   serviceName,
			Logger:   appLog,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka unavailable, auth events disabled: %v", err))
		} else {
			events = publisher
			defer publisher.Close()
			appLog.Info(fmt.Sprintf("Kafka event publisher initialized (topic: %s)", cfg.Kafka.Topic))
		}
	}

	// JWT secret is required outside development
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		if cfg.IsDevelopment() {
			jwtSecret = "dev-only-secret-key-do-not-use-in-production"
			appLog.Warn("JWT_SECRET not set, using dev-only default (NEVER use in production)")
		} else {
			appLog.Fatal("JWT_SECRET environment variable is required in production")
		}
	}

	authService := service.NewAuthService(userRepo, sessionRepo, events, &service.AuthServiceConfig{
		JWTSecret:          jwtSecret,
		JWTIssuer:          cfg.JWT.Issuer,
		AccessTokenExpiry:  cfg.JWT.AccessTokenTTL,
		RefreshTokenExpiry: cfg.JWT.RefreshTokenTTL,
		BcryptCost:         12,
	})

	authHandler := handler.NewAuthHandler(authService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(appLog))

	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(serviceName))
	}

	// Health check endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API routes
	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			// Public endpoints
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)

			// Protected endpoints (require authentication)
			protected := auth.Group("")
			protected.Use(middleware.Auth(authService))
			{
				protected.GET("/me", authHandler.Me)
				protected.PUT("/profile", authHandler.UpdateProfile)
				protected.POST("/logout-all", authHandler.LogoutAll)
			}
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Auth service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
