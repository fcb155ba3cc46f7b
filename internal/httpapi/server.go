// Package httpapi exposes the readiness engine over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/aetherlight/readygate/internal/engine"
	"github.com/aetherlight/readygate/internal/gaplog"
	"github.com/aetherlight/readygate/internal/logging"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server provides HTTP endpoints over the engine and the gap log.
type Server struct {
	echo       *echo.Echo
	engine     *engine.Engine
	gapLogPath string
	logger     *logging.Logger
	config     *Config
}

// NewServer creates the HTTP server. gapLogPath may be empty to disable the
// gaps endpoint.
func NewServer(eng *engine.Engine, gapLogPath string, logger *logging.Logger, cfg *Config) (*Server, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 9180}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:       e,
		engine:     eng,
		gapLogPath: gapLogPath,
		logger:     logger.Named("httpapi"),
		config:     cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/checks", s.handleCheck)
	v1.GET("/gaps", s.handleGaps)
}

// CheckRequest is the request body for POST /api/v1/checks.
type CheckRequest struct {
	WorkflowType string          `json:"workflow_type"`
	Context      *engine.Context `json:"context"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleCheck(c echo.Context) error {
	var req CheckRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid check request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.WorkflowType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workflow_type field is required")
	}
	if req.Context == nil {
		req.Context = &engine.Context{}
	}

	result, err := s.engine.CheckWorkflow(c.Request().Context(),
		engine.WorkflowType(req.WorkflowType), req.Context)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownWorkflowType) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.logger.Error("check failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "check failed")
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGaps(c echo.Context) error {
	if s.gapLogPath == "" {
		return echo.NewHTTPError(http.StatusNotFound, "gap log not configured")
	}
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}
	records, err := gaplog.Tail(s.gapLogPath, limit)
	if err != nil {
		s.logger.Error("failed to read gap log", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read gap log")
	}
	if records == nil {
		records = []engine.GapRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("http server started", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// Handler exposes the echo handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
