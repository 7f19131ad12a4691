package http

import (
	"time"

	"taskboard/internal/config"
	"taskboard/internal/http/handlers"
	"taskboard/internal/http/middleware"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the task API and operational endpoints.
// db is nil when the server runs on the in-memory store; cfg may be nil
// in tests, in which case rate limiting defaults apply.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, tasks *service.TaskService, version string, cfg *config.Config) {
	h := handlers.NewHandler(tasks)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	limit := 100
	window := time.Minute
	if cfg != nil {
		limit = cfg.APIRateLimit
		window = cfg.APIRateWindow
	}

	var rl gin.HandlerFunc
	if middleware.RedisEnabled() {
		rl = middleware.RedisRateLimit(limit, window)
	} else {
		rl = middleware.SimpleRateLimit(limit, window)
	}

	api := r.Group("/tasks")
	api.Use(rl)
	{
		api.POST("", h.CreateTask)
		api.GET("", h.ListTasks)
		api.GET("/:id", h.GetTask)
		api.PATCH("/:id", h.UpdateTask)
		api.DELETE("/:id", h.DeleteTask)
	}
}
