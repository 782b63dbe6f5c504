// Package api exposes the HTTP surface of the eligibility service: the
// prediction endpoint, the informational model endpoints and the feedback
// endpoints.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/blood-eligibility-server/internal/database"
	"github.com/blood-eligibility-server/internal/domain"
	"github.com/blood-eligibility-server/internal/feedback"
	"github.com/blood-eligibility-server/internal/middleware"
)

// Server represents the HTTP server.
type Server struct {
	logger        *logrus.Logger
	configManager domain.ConfigManager
	engine        domain.DecisionEngine
	artifacts     domain.ArtifactProvider
	feedbackStore feedback.Store
	db            *database.DB
	router        *gin.Engine
	server        *http.Server
}

// Options carries the collaborators the server exposes. FeedbackStore and
// DB are optional.
type Options struct {
	Logger        *logrus.Logger
	ConfigManager domain.ConfigManager
	Engine        domain.DecisionEngine
	Artifacts     domain.ArtifactProvider
	FeedbackStore feedback.Store
	DB            *database.DB
}

// NewServer creates a new HTTP server instance.
func NewServer(opts Options) *Server {
	cfg := opts.ConfigManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	if cfg.Server.RateLimit > 0 {
		router.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	}

	server := &Server{
		logger:        opts.Logger,
		configManager: opts.ConfigManager,
		engine:        opts.Engine,
		artifacts:     opts.Artifacts,
		feedbackStore: opts.FeedbackStore,
		db:            opts.DB,
		router:        router,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.WithField("addr", addr).Info("HTTP server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleStatus)
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/predict", s.handlePredict)
		v1.GET("/features", s.handleFeatures)
		v1.GET("/model-info", s.handleModelInfo)

		if s.feedbackStore != nil {
			v1.POST("/feedback", s.handleSaveFeedback)
			v1.GET("/feedback", s.handleListFeedback)
		}
	}
}
