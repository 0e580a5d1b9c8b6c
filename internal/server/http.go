package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/photogate-dev/photogate-backend/internal/conf"
	"github.com/photogate-dev/photogate-backend/internal/data"
	"github.com/photogate-dev/photogate-backend/internal/image/service"
	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

const healthCheckTimeout = 3 * time.Second

type HTTPServer struct {
	server *http.Server
	logger *zap.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *zap.Logger,
	d *data.Data,
	imageService *service.ImageService,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))

	router.GET("/health", healthHandler(d))

	api := router.Group("/api")
	if config.RateLimit.Enabled {
		limiter := NewRateLimiter(d.Redis, config.RateLimit.Requests, config.RateLimit.Window, log)
		api.Use(RateLimitMiddleware(limiter))
	}
	imageService.RegisterRoutes(api)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// healthHandler probes the relational store and the blob store
// independently; the endpoint is healthy only when both respond.
func healthHandler(d *data.Data) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		dbOK := d.DB.HealthCheck(ctx) == nil
		storageOK := d.MinIO.HealthCheck(ctx) == nil

		status := "ok"
		httpStatus := http.StatusOK
		if !dbOK || !storageOK {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status": status,
			"services": gin.H{
				"database": dbOK,
				"storage":  storageOK,
			},
		})
	}
}

// LoggerMiddleware logs every request and threads a request id through
// the context so downstream log lines can be correlated.
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := uuid.NewString()
		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		latency := time.Since(start)

		log.Info("HTTP request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
