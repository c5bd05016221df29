package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/usecase"
)

// Controller is the scheduler surface exposed over HTTP.
type Controller interface {
	Status() usecase.Status
	TriggerAsync(tenantID string) error
	UpdateIngestionSchedule(spec string) error
}

// ArticleLister serves stored articles.
type ArticleLister interface {
	List(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error)
}

// Server is the admin API.
type Server struct {
	ctrl     Controller
	articles ArticleLister
	logger   *slog.Logger
	router   *gin.Engine
}

// NewServer builds the router with every route registered.
func NewServer(ctrl Controller, articles ArticleLister, logger *slog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		ctrl:     ctrl,
		articles: articles,
		logger:   logger,
		router:   router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.POST("/ingest", s.handleIngest)
		api.PUT("/schedule", s.handleSchedule)
		api.GET("/articles", s.handleArticles)
	}

	return s
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Info("http server listening", "addr", addr)
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if logger == nil {
			return
		}
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
