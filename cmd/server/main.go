package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mkovalyov/focusaid/internal/api"
	"github.com/mkovalyov/focusaid/internal/assistant"
	"github.com/mkovalyov/focusaid/internal/db"
	"github.com/mkovalyov/focusaid/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: failed to load: %v", err)
	}

	logger := utils.MustNewLogger(cfg.Logging)
	defer logger.Sync()

	ctx := context.Background()

	store, err := db.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("mongo: failed to connect", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("mongo: close error", zap.Error(err))
		}
	}()

	if err := store.Ping(ctx); err != nil {
		logger.Fatal("mongo: ping failed", zap.Error(err))
	}
	if err := store.EnsureCollections(ctx); err != nil {
		logger.Fatal("mongo: ensure collections", zap.Error(err))
	}

	var taskCache db.TaskCache
	if cfg.Redis.URL != "" {
		cache, err := db.NewRedisTaskCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Fatal("redis: failed to connect", zap.Error(err))
		}
		defer cache.Close()
		taskCache = cache
	}

	if !cfg.OpenAI.Enabled() {
		logger.Warn("no OPENAI_API_KEY configured, running in fallback mode")
	}

	resolver := assistant.NewResolver(cfg.OpenAI, logger)
	exchange := assistant.NewService(store, resolver)

	router := setupRouter(store, exchange, taskCache, logger)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server crashed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}

func setupRouter(store *db.Mongo, exchange *assistant.Service, taskCache db.TaskCache, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api.NewHandler(store, store, exchange, taskCache, logger).RegisterRoutes(router)

	return router
}
