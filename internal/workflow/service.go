// Package workflow wires the task graph, orchestrator, state persistence,
// and event publishing into one service consumed by the HTTP and MCP
// transports.
//
// The orchestrator itself is single-threaded by contract; the service
// serializes all access behind a mutex so concurrent transport handlers
// stay safe.
package workflow

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workflowd/internal/events"
	"github.com/fyrsmithlabs/workflowd/internal/orchestrator"
	"github.com/fyrsmithlabs/workflowd/internal/statestore"
	"github.com/fyrsmithlabs/workflowd/internal/taskgraph"
)

// Service owns one workflow's runtime.
type Service struct {
	mu sync.Mutex

	name   string
	graph  *taskgraph.Graph
	plan   *taskgraph.ExecutionPlan
	orch   *orchestrator.Orchestrator
	cfg    orchestrator.Config
	store  *statestore.Store
	events *events.Publisher
	logger *zap.Logger
}

// Options configures optional collaborators. Store and Events may be nil:
// without a store state is not persisted, without a publisher no events
// are emitted.
type Options struct {
	Store  *statestore.Store
	Events *events.Publisher
}

// New builds a service over phases. When a store is configured, persisted
// state is loaded and replayed into the orchestrator.
func New(name string, phases []taskgraph.Phase, cfg orchestrator.Config, opts Options, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	graph := taskgraph.Build(phases, logger)
	s := &Service{
		name:   name,
		graph:  graph,
		plan:   taskgraph.NewExecutionPlan(graph, logger),
		orch:   orchestrator.New(graph, cfg, logger),
		cfg:    cfg,
		store:  opts.Store,
		events: opts.Events,
		logger: logger,
	}

	if s.store != nil {
		state, err := s.store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted state: %w", err)
		}
		if len(state.Completed) > 0 || len(state.Failed) > 0 {
			s.orch.LoadState(state.Completed, state.Failed)
			logger.Info("restored workflow state",
				zap.Int("completed", len(state.Completed)),
				zap.Int("failed", len(state.Failed)))
		}
	}

	return s, nil
}

// Name returns the workflow name.
func (s *Service) Name() string { return s.name }

// Status returns the current runtime snapshot.
func (s *Service) Status() orchestrator.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch.Status()
}

// Plan returns the current execution plan.
func (s *Service) Plan() *taskgraph.ExecutionPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Report returns the textual execution-plan report.
func (s *Service) Report() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan.Render()
}

// Mermaid returns the graph as a Mermaid flowchart.
func (s *Service) Mermaid() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return taskgraph.Mermaid(s.graph)
}

// NextTasks returns the advisory set of tasks to start now.
func (s *Service) NextTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch.NextTasks()
}

// StartTask attempts to start id. False means the task was not ready.
func (s *Service) StartTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.orch.StartTask(id) {
		return false
	}
	snap := s.orch.Status()
	s.events.Publish(events.SubjectTaskStarted, id, snap.Progress, snap.Blocked)
	return true
}

// CompleteTask records a completion, persists state, and publishes the
// lifecycle event. False means the id was unknown.
func (s *Service) CompleteTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.orch.CompleteTask(id) {
		return false
	}
	s.persistLocked()
	snap := s.orch.Status()
	s.events.Publish(events.SubjectTaskCompleted, id, snap.Progress, snap.Blocked)
	return true
}

// FailTask records a failure (cascading blocks downstream), persists
// state, and publishes the lifecycle event. False means the id was
// unknown.
func (s *Service) FailTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.orch.FailTask(id) {
		return false
	}
	s.persistLocked()
	snap := s.orch.Status()
	s.events.Publish(events.SubjectTaskFailed, id, snap.Progress, snap.Blocked)
	return true
}

// Reset clears runtime state, persists the empty state, and publishes the
// reset event.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orch.Reset()
	s.persistLocked()
	s.events.Publish(events.SubjectReset, "", 0, 0)
}

// Reload swaps in a new set of phase definitions. Runtime state carries
// over through the persistence replay path: completed and failed ids that
// still exist in the new graph keep their state, everything else resets.
func (s *Service) Reload(phases []taskgraph.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := s.orch.CompletedIDs()
	failed := s.orch.FailedIDs()

	s.graph = taskgraph.Build(phases, s.logger)
	s.plan = taskgraph.NewExecutionPlan(s.graph, s.logger)
	s.orch = orchestrator.New(s.graph, s.cfg, s.logger)
	s.orch.LoadState(completed, failed)
	s.persistLocked()

	snap := s.orch.Status()
	s.events.Publish(events.SubjectStateLoaded, "", snap.Progress, snap.Blocked)
	s.logger.Info("workflow definitions reloaded",
		zap.Int("tasks", s.graph.Len()))
}

// persistLocked saves the two flat id lists. Callers hold s.mu.
func (s *Service) persistLocked() {
	if s.store == nil {
		return
	}
	err := s.store.Save(&statestore.State{
		Workflow:  s.name,
		Completed: s.orch.CompletedIDs(),
		Failed:    s.orch.FailedIDs(),
	})
	if err != nil {
		s.logger.Error("failed to persist state", zap.Error(err))
	}
}
