package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yukikurage/learning-admin-api/internal/config"
	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/database"
	"github.com/yukikurage/learning-admin-api/internal/handlers"
	"github.com/yukikurage/learning-admin-api/internal/middleware"
	"github.com/yukikurage/learning-admin-api/internal/pubsub"
	"github.com/yukikurage/learning-admin-api/internal/queries"
	"github.com/yukikurage/learning-admin-api/internal/query"
	"github.com/yukikurage/learning-admin-api/internal/services"
	"github.com/yukikurage/learning-admin-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := newLogger(cfg.Server.IsRelease())
	defer logger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	// Connect to database
	db, err := database.Open(cfg.Database, !cfg.Server.IsRelease(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if cfg.Demo.Seed {
		if err := database.Seed(ctx, db); err != nil {
			logger.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	// Video media: presigned S3 URLs when a region is configured
	var media storage.MediaResolver = storage.Passthrough{}
	if cfg.Storage.Region != "" {
		s3Media, err := storage.NewS3Resolver(ctx, cfg.Storage, logger)
		if err != nil {
			logger.Fatal("Failed to configure S3 media", zap.Error(err))
		}
		media = s3Media
	}

	svc := services.New(db, services.Options{Latency: cfg.Demo.Latency, Media: media})

	// Sessions and cache invalidation share Redis when it is configured
	var store sessions.Store
	var bus query.Bus
	if addr := cfg.Redis.Addr(); addr != "" {
		store, err = redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			addr,
			"", // username (empty for default user)
			cfg.Redis.Password,
			[]byte(cfg.Session.Secret),
		)
		if err != nil {
			logger.Fatal("Failed to create Redis session store", zap.Error(err))
		}

		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		bus = pubsub.NewRedisBus(rdb, pubsub.DefaultChannel, logger)
	} else {
		store = cookie.NewStore([]byte(cfg.Session.Secret))
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Server.IsRelease(),
		SameSite: http.SameSiteLaxMode,
	})

	client := query.NewClient(query.Options{
		StaleTime: cfg.Cache.StaleTime,
		GCTime:    cfg.Cache.GCTime,
		Retry: &query.RetryPolicy{
			MaxRetries: cfg.Cache.RetryCount,
			BaseDelay:  cfg.Cache.RetryBackoff,
			MaxDelay:   30 * time.Second,
		},
		Logger: logger,
		Bus:    bus,
	})
	stopListening, err := client.Listen(ctx)
	if err != nil {
		logger.Fatal("Failed to subscribe to cache invalidations", zap.Error(err))
	}
	defer stopListening()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Cache.GCSchedule, func() {
		if n := client.GC(); n > 0 {
			logger.Debug("Evicted idle query cache entries", zap.Int("entries", n))
		}
	}); err != nil {
		logger.Fatal("Invalid cache GC schedule", zap.String("schedule", cfg.Cache.GCSchedule), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, svc.Auth, queries.New(client, svc))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newLogger(release bool) *zap.Logger {
	zapConfig := zap.NewDevelopmentConfig()
	if release {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := zapConfig.Build()
	return logger
}
