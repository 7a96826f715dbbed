package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/internal/cache"
	"taskhub/internal/config"
	"taskhub/internal/db"
	httpServer "taskhub/internal/http"
	"taskhub/internal/http/handlers"
	"taskhub/internal/http/middleware"
	"taskhub/internal/logger"
	"taskhub/internal/repository"
	"taskhub/internal/service"
	"taskhub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	taskRepo := repository.NewTaskRepository(dbPool)
	userRepo := repository.NewUserRepository(dbPool)
	taskCache := cache.NewTaskCache(rdb, cfg.CacheTTL)
	hub := ws.NewHub()

	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens)
	taskService := service.NewTaskService(taskRepo, taskCache, hub)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(middleware.CORS(cfg.AllowedOrigin))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, httpServer.Deps{
		DB:      dbPool,
		Redis:   rdb,
		Handler: handlers.NewHandler(authService, taskService),
		Tokens:  tokens,
		Hub:     hub,
		Cfg:     cfg,
		Version: version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
