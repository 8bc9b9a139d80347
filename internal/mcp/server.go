// Package mcp exposes the workflow orchestrator to coding agents over the
// Model Context Protocol.
//
// This implementation uses the MCP SDK
// (github.com/modelcontextprotocol/go-sdk/mcp) and calls the workflow
// service directly. The agent consumes plan/status tools for display and
// gating, and the executor-side tools (tasks_next, task_start,
// task_complete, task_fail) form the same handshake the HTTP API offers.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workflowd/internal/workflow"
)

// Server is the MCP server over the workflow service.
type Server struct {
	mcp    *mcp.Server
	svc    *workflow.Service
	logger *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "workflowd")
	Name string

	// Version is the server version (default: "1.0.0")
	Version string

	// Logger for structured logging
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "workflowd",
		Version: "1.0.0",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates a new MCP server over the workflow service.
func NewServer(cfg *Config, svc *workflow.Service) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if svc == nil {
		return nil, fmt.Errorf("workflow service is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:    mcpServer,
		svc:    svc,
		logger: cfg.Logger,
	}
	s.registerTools()

	return s, nil
}

// Run serves MCP over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP stdio server")
	transport := &mcp.StdioTransport{}
	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}
