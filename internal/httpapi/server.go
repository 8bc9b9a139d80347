// Package httpapi provides the HTTP API for workflowd.
//
// The API has two audiences: reporting surfaces (status, plan, report,
// graph) and the external executor driving the start/complete/fail
// handshake. The orchestrator's protocol results stay boolean, so
// handshake endpoints translate false into 409 Conflict (not ready) or
// 404 Not Found (unknown id) without ever surfacing an exception.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/workflowd/internal/workflow"
)

// Server provides HTTP endpoints for workflowd.
type Server struct {
	echo    *echo.Echo
	svc     *workflow.Service
	logger  *zap.Logger
	config  *Config
	metrics *Metrics
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// RateLimit is requests per second per client IP. Zero disables.
	RateLimit float64
}

// NewServer creates a new HTTP server.
func NewServer(svc *workflow.Service, logger *zap.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("workflow service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 9290}
	}

	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(
			middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			metrics.RecordRequest(c.Request().Context(),
				c.Request().Method, c.Path(), c.Response().Status, duration)

			return err
		}
	})

	s := &Server{
		echo:    e,
		svc:     svc,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}
	s.registerRoutes(registry)

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes(registry *prometheus.Registry) {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/plan", s.handlePlan)
	v1.GET("/report", s.handleReport)
	v1.GET("/graph", s.handleGraph)
	v1.GET("/tasks/next", s.handleNextTasks)
	v1.POST("/tasks/:id/start", s.handleStartTask)
	v1.POST("/tasks/:id/complete", s.handleCompleteTask)
	v1.POST("/tasks/:id/fail", s.handleFailTask)
	v1.POST("/reset", s.handleReset)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Workflow string `json:"workflow,omitempty"`
}

// TaskActionResponse is the response body for handshake endpoints.
type TaskActionResponse struct {
	TaskID   string `json:"task_id"`
	Accepted bool   `json:"accepted"`
}

// NextTasksResponse is the response body for GET /api/v1/tasks/next.
type NextTasksResponse struct {
	Tasks []string `json:"tasks"`
}

// GraphResponse is the response body for GET /api/v1/graph.
type GraphResponse struct {
	Mermaid string `json:"mermaid"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Workflow: s.svc.Name()})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Status())
}

func (s *Server) handlePlan(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Plan())
}

func (s *Server) handleReport(c echo.Context) error {
	return c.String(http.StatusOK, s.svc.Report())
}

func (s *Server) handleGraph(c echo.Context) error {
	return c.JSON(http.StatusOK, GraphResponse{Mermaid: s.svc.Mermaid()})
}

func (s *Server) handleNextTasks(c echo.Context) error {
	tasks := s.svc.NextTasks()
	if tasks == nil {
		tasks = []string{}
	}
	return c.JSON(http.StatusOK, NextTasksResponse{Tasks: tasks})
}

func (s *Server) handleStartTask(c echo.Context) error {
	id := c.Param("id")
	if !s.svc.StartTask(id) {
		// Not ready covers unknown ids too; the handshake contract is
		// boolean, callers retry after the next status poll.
		return echo.NewHTTPError(http.StatusConflict,
			fmt.Sprintf("task %s is not ready", id))
	}
	s.metrics.RecordTransition(c.Request().Context(), "started")
	return c.JSON(http.StatusOK, TaskActionResponse{TaskID: id, Accepted: true})
}

func (s *Server) handleCompleteTask(c echo.Context) error {
	id := c.Param("id")
	if !s.svc.CompleteTask(id) {
		return echo.NewHTTPError(http.StatusNotFound,
			fmt.Sprintf("unknown task %s", id))
	}
	s.metrics.RecordTransition(c.Request().Context(), "completed")
	return c.JSON(http.StatusOK, TaskActionResponse{TaskID: id, Accepted: true})
}

func (s *Server) handleFailTask(c echo.Context) error {
	id := c.Param("id")
	if !s.svc.FailTask(id) {
		return echo.NewHTTPError(http.StatusNotFound,
			fmt.Sprintf("unknown task %s", id))
	}
	s.metrics.RecordTransition(c.Request().Context(), "failed")
	return c.JSON(http.StatusOK, TaskActionResponse{TaskID: id, Accepted: true})
}

func (s *Server) handleReset(c echo.Context) error {
	s.svc.Reset()
	return c.JSON(http.StatusOK, s.svc.Status())
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
