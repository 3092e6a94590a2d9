package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/cmdbreizh/site-backend/handlers"
	"github.com/cmdbreizh/site-backend/internal/config"
	"github.com/cmdbreizh/site-backend/internal/database"
	"github.com/cmdbreizh/site-backend/internal/mailer"
	reviewhandler "github.com/cmdbreizh/site-backend/internal/review/handler"
	"github.com/cmdbreizh/site-backend/internal/review/repository"
	"github.com/cmdbreizh/site-backend/internal/review/service"
	"github.com/cmdbreizh/site-backend/internal/review/submitcache"
	"github.com/cmdbreizh/site-backend/internal/tokens"
	"github.com/cmdbreizh/site-backend/pkg/logger"
	"github.com/cmdbreizh/site-backend/pkg/metrics"
	"github.com/cmdbreizh/site-backend/pkg/middleware"
)

func main() {
	// logging level is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: base_url=%s smtp=%v redis=%v", cfg.Site.BaseURL, cfg.SMTP.Host != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, "+reviewhandler.DeviceTokenHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the rate limiter and submission cache can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per device token when sent, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Connect to Postgres and make sure the reviews table exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.ConnectPostgres(ctx, cfg.Database.URL)
	if err != nil {
		cancel()
		logger.Fatalf("failed to connect to Postgres: %v", err)
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		logger.Fatalf("failed to ensure schema: %v", err)
	}
	cancel()
	defer db.Close()

	gateway, err := mailer.New(cfg.SMTP, cfg.Site)
	if err != nil {
		logger.Fatalf("failed to configure mail gateway: %v", err)
	}

	repo := repository.NewPostgresRepo(db)
	svc := service.New(repo, gateway, cfg.Site.BaseURL)

	var cache *submitcache.Cache
	if redisClient != nil {
		cache = submitcache.New(redisClient, "", cfg.Review.Cooldown)
	}

	h := reviewhandler.New(svc, cache, cfg.Site.BaseURL)
	h.RegisterRoutes(r)
	handlers.RegisterContactRoutes(r, gateway)

	// Admin surface: bearer-token protected review listing. Disabled entirely
	// when no secret is configured.
	if cfg.Admin.JWTSecret != "" {
		admin := r.Group("/api/admin")
		admin.Use(middleware.AuthMiddleware(tokens.NewHSVerifier(cfg.Admin.JWTSecret)))
		h.RegisterAdminRoutes(admin)
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when the database answers
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{"database": true, "redis": redisClient != nil}
		ready := true
		if err := db.PingContext(c.Request.Context()); err != nil {
			deps["database"] = false
			ready = false
		}
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ready": ready, "deps": deps})
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting site backend on %s", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
