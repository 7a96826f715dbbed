package http

import (
	"taskhub/internal/config"
	"taskhub/internal/http/handlers"
	"taskhub/internal/http/middleware"
	"taskhub/internal/service"
	"taskhub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// Deps is everything the router needs, constructed in main and
// passed down explicitly.
type Deps struct {
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Handler *handlers.Handler
	Tokens  *service.TokenManager
	Hub     *ws.Hub
	Cfg     *config.Config
	Version string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	healthHandler := handlers.NewHealthHandler(d.DB, d.Redis, d.Version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(d.Redis, d.Cfg.APIRateLimit, d.Cfg.APIRateWindow))

	// Auth (tighter limit than the rest of the API)
	authRL := middleware.RedisRateLimit(d.Redis, d.Cfg.AuthRateLimit, d.Cfg.AuthRateWindow)
	v1.POST("/auth/register", authRL, d.Handler.Register)
	v1.POST("/auth/login", authRL, d.Handler.Login)

	// Tasks, owner-scoped via the auth middleware
	tasks := v1.Group("/tasks")
	tasks.Use(middleware.Auth(d.Tokens))
	{
		tasks.POST("", d.Handler.CreateTask)
		tasks.GET("", d.Handler.ListTasks)
		tasks.GET("/:id", d.Handler.GetTask)
		tasks.PUT("/:id", d.Handler.UpdateTask)
		tasks.DELETE("/:id", d.Handler.DeleteTask)
	}

	// WebSocket subscription for task change events
	r.GET("/ws", ws.Handle(d.Hub, d.Tokens, d.Cfg.AllowedOrigin))
}
