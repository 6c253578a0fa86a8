package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rentrobo/internal/config"
	"rentrobo/internal/handler"
	"rentrobo/internal/logger"
	"rentrobo/internal/metrics"
	"rentrobo/internal/repository"
	"rentrobo/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)
	log.Info("RentRobo server", "version", Version, "build_time", BuildTime, "git_commit", GitCommit)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("failed to prepare database schema", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	m := metrics.New(prometheus.DefaultRegisterer)

	// Recommendation backend
	var backend service.Recommender
	if cfg.Recommend.APIURL != "" {
		backend = service.NewRemoteRecommender(cfg.Recommend.APIURL, cfg.Recommend.Timeout)
		log.Info("using remote recommender", "url", cfg.Recommend.APIURL)
	} else {
		backend = service.NewLocalRecommender(repo, service.NewRanker(cfg.Recommend.TopN), cfg.Recommend.MaxDrivingM)
		log.Info("using built-in recommender", "top_n", cfg.Recommend.TopN, "max_driving_m", cfg.Recommend.MaxDrivingM)
	}

	var cache *service.RecommendationCache
	if cfg.Redis.Enabled {
		client := service.NewRedisClient(cfg.Redis)
		defer client.Close()
		cache = service.NewRecommendationCache(client, cfg.Recommend.CacheTTL)
		if err := cache.Ping(ctx); err != nil {
			log.Warn("redis unreachable, recommendations will not be cached until it recovers", "addr", cfg.Redis.Address, "error", err)
		} else {
			log.Info("recommendation cache enabled", "addr", cfg.Redis.Address, "ttl", cfg.Recommend.CacheTTL)
		}
	}

	// Initialize services
	recommendService := service.NewRecommendService(backend, cache, m, log)
	listingService := service.NewListingService(repo)
	chatService := service.NewChatService(service.ChatOptions{
		TypingDelay:         cfg.Chat.TypingDelay,
		InterstitialDelay:   cfg.Chat.InterstitialDelay,
		CloseDelay:          cfg.Chat.CloseDelay,
		IdleTTL:             cfg.Chat.SessionIdleTTL,
		RecommendOnComplete: cfg.Recommend.SubmitOnFinish,
	}, repo, recommendService, m, log)

	recommendHandler, err := handler.NewRecommendHandler(recommendService, log)
	if err != nil {
		log.Error("failed to compile payload schema", "error", err)
		os.Exit(1)
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	if len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if err := repo.Ping(c.Request.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":        status,
			"service":       "rentrobo",
			"version":       Version,
			"chat_sessions": chatService.Len(),
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.Handlers{
		Chat:        handler.NewChatHandler(chatService, log),
		Recommend:   recommendHandler,
		Listings:    handler.NewListingHandler(listingService, cfg.Listings.DefaultCount, cfg.Listings.MaxCount),
		Submissions: handler.NewSubmissionHandler(repo),
	}.Register(router)

	// Serve static files (frontend)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router, log)

	go chatService.RunSweeper(ctx, cfg.Chat.SweepInterval)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error("server failed", "error", err)
		}
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if err := chatService.Shutdown(shutdownCtx); err != nil {
		log.Error("chat shutdown incomplete", "error", err)
	}
	log.Info("server stopped")
}

// requestLogger logs one line per request
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
