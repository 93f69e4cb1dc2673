package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cropcare/cropcare-go/internal/infra/config"
)

// NewRouter wires up the mock API handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.Mock.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.Mock.RateLimit, handler.logger),
	)

	api := router.Group("/api")
	{
		api.GET("/ping", handler.Ping)
		api.GET("/tips", handler.Tips)
		api.GET("/me", handler.Me)
		api.POST("/infer", handler.Infer)
		api.GET("/weather", handler.Weather)
		api.GET("/air", handler.Air)
		api.GET("/detections", handler.Detections)
		api.GET("/scans/:id/image", handler.ScanImage)
	}

	return &http.Server{
		Addr:           cfg.Mock.Address,
		Handler:        router,
		ReadTimeout:    cfg.Mock.ReadTimeout,
		WriteTimeout:   cfg.Mock.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
