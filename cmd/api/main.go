package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vibely/vibely-backend/internal/config"
	"github.com/vibely/vibely-backend/internal/domain"
	"github.com/vibely/vibely-backend/internal/handler"
	"github.com/vibely/vibely-backend/internal/middleware"
	"github.com/vibely/vibely-backend/internal/repository"
	"github.com/vibely/vibely-backend/internal/routes"
	"github.com/vibely/vibely-backend/internal/service"
	"github.com/vibely/vibely-backend/internal/stream"
	pkgcache "github.com/vibely/vibely-backend/pkg/cache"
	"github.com/vibely/vibely-backend/pkg/jwt"
	pkglogger "github.com/vibely/vibely-backend/pkg/logger"
	pkgredis "github.com/vibely/vibely-backend/pkg/redis"
	pkgstorage "github.com/vibely/vibely-backend/pkg/storage"
)

// @title           Vibely Backend API
// @version         1.0
// @description     Vibely social platform - real-time messaging backend
//
// @license.name    MIT
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	envFiles := config.LoadEnvFiles()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	pkglogger.Get().Info().
		Str("env", env).
		Strs("env_files", envFiles).
		Msg("starting")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// MySQL
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Get().Info().Msg("connected to MySQL")
	if err := db.AutoMigrate(&domain.Member{}, &domain.Message{}); err != nil {
		pkglogger.Get().Warn().Err(err).Msg("migration warning")
	}

	// Redis (optional: cache degrades to no-op without it)
	var cacheService pkgcache.Service
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Get().Warn().Err(err).Msg("continuing without Redis")
	} else {
		pkglogger.Get().Info().Msg("connected to Redis")
		cacheService = pkgcache.NewService(redisClient)
	}

	// S3-compatible media storage
	var s3Client *pkgstorage.S3Client
	if cfg.S3.Bucket != "" {
		s3Client, err = pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			CDNURL:          cfg.S3.CDNURL,
			BasePath:        cfg.S3.BasePath,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
		})
		if err != nil {
			pkglogger.Get().Warn().Err(err).Msg("continuing without S3 storage")
			s3Client = nil
		}
	}

	// Live stream registry: one per process, torn down at shutdown
	registry := stream.NewRegistry(cfg.Stream.BufferSize)
	fanout := stream.NewFanout(registry)

	// JWT Manager
	jwtManager := jwt.NewManager(cfg.JWT.Secret, 24*time.Hour)

	// Repositories and services
	messageRepo := repository.NewMessageRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	mediaService := service.NewMediaService(s3Client)
	messageService := service.NewMessageService(messageRepo, memberRepo, fanout, cacheService, mediaService)

	// Handlers
	messageHandler := handler.NewMessageHandler(messageService, mediaService)
	streamHandler := handler.NewStreamHandler(registry, cfg.Stream.Heartbeat)

	// Router
	if env != "development" && env != "dev" && env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowedOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "vibely-backend",
			"streams": registry.ActiveCount(),
			"time":    time.Now().Unix(),
		})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, messageHandler, streamHandler, jwtManager)

	// Serve with graceful shutdown; open streams are closed via the registry.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		pkglogger.Get().Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	pkglogger.Get().Info().Msg("shutting down")
	registry.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		pkglogger.Get().Error().Err(err).Msg("server shutdown")
	}
}

// initDB opens the MySQL connection pool
func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
