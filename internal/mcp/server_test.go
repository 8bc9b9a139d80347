package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workflowd/internal/orchestrator"
	"github.com/fyrsmithlabs/workflowd/internal/taskgraph"
	"github.com/fyrsmithlabs/workflowd/internal/workflow"
)

func testService(t *testing.T) *workflow.Service {
	t.Helper()
	phases := []taskgraph.Phase{
		{ID: "p1", Tasks: []taskgraph.Task{
			{ID: "A", EstimatedDuration: 1},
			{ID: "B", EstimatedDuration: 1, Dependencies: []string{"A"}},
		}},
	}
	svc, err := workflow.New("test", phases, orchestrator.DefaultConfig(),
		workflow.Options{}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestNewServer(t *testing.T) {
	srv, err := NewServer(DefaultConfig(), testService(t))
	require.NoError(t, err)
	require.NotNil(t, srv)
	assert.NotNil(t, srv.mcp)
}

func TestNewServer_NilService(t *testing.T) {
	_, err := NewServer(DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestNewServer_NilConfigUsesDefaults(t *testing.T) {
	srv, err := NewServer(nil, testService(t))
	require.NoError(t, err)
	assert.NotNil(t, srv.logger)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "workflowd", cfg.Name)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.NotNil(t, cfg.Logger)
}
