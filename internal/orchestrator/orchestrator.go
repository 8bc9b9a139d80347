package orchestrator

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workflowd/internal/taskgraph"
)

// Config holds orchestrator scheduling policy.
type Config struct {
	// MaxConcurrent bounds the advisory number of simultaneously running
	// tasks.
	MaxConcurrent int `koanf:"max_concurrent"`

	// PrioritizeCriticalPath orders ready tasks critical-path-first.
	PrioritizeCriticalPath bool `koanf:"prioritize_critical_path"`
}

// DefaultConfig returns sensible scheduling defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:          3,
		PrioritizeCriticalPath: true,
	}
}

// Orchestrator is the stateful runtime over an immutable task graph.
//
// Not safe for concurrent use; callers serialize access. Independent
// instances share no state and may be used in parallel tests.
type Orchestrator struct {
	graph  *taskgraph.Graph
	config Config
	logger *zap.Logger

	running   map[string]struct{}
	completed map[string]struct{}
	failed    map[string]struct{}
}

// New creates an orchestrator over graph. A nil logger is replaced with a
// no-op logger; a non-positive MaxConcurrent falls back to the default.
func New(graph *taskgraph.Graph, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	return &Orchestrator{
		graph:     graph,
		config:    cfg,
		logger:    logger,
		running:   make(map[string]struct{}),
		completed: make(map[string]struct{}),
		failed:    make(map[string]struct{}),
	}
}

// Graph returns the underlying immutable graph.
func (o *Orchestrator) Graph() *taskgraph.Graph {
	return o.graph
}

// IsTaskReady reports whether id can start now: the task is known, not
// already running or terminal, not blocked by a failed ancestor, and every
// dependency is completed.
func (o *Orchestrator) IsTaskReady(id string) bool {
	node := o.graph.Node(id)
	if node == nil {
		return false
	}
	if _, ok := o.running[id]; ok {
		return false
	}
	if _, ok := o.completed[id]; ok {
		return false
	}
	if _, ok := o.failed[id]; ok {
		return false
	}
	if o.blockedSet()[id] {
		return false
	}
	for _, dep := range node.Dependencies {
		if o.graph.Node(dep) == nil {
			continue
		}
		if _, ok := o.completed[dep]; !ok {
			return false
		}
	}
	return true
}

// ReadyTasks returns every ready task id in scheduling order: ascending
// depth, with critical-path tasks first when PrioritizeCriticalPath is
// set. Ties keep declaration order, so the result is deterministic.
func (o *Orchestrator) ReadyTasks() []string {
	var ready []string
	for _, id := range o.graph.Order {
		if o.IsTaskReady(id) {
			ready = append(ready, id)
		}
	}

	sort.SliceStable(ready, func(i, j int) bool {
		a, b := o.graph.Node(ready[i]), o.graph.Node(ready[j])
		if o.config.PrioritizeCriticalPath && a.OnCriticalPath != b.OnCriticalPath {
			return a.OnCriticalPath
		}
		return a.Depth < b.Depth
	})
	return ready
}

// CanStartMore reports whether the advisory concurrency budget has room.
func (o *Orchestrator) CanStartMore() bool {
	return len(o.running) < o.config.MaxConcurrent
}

// NextTasks returns up to MaxConcurrent-running ready tasks in scheduling
// order. Purely advisory: no state changes.
func (o *Orchestrator) NextTasks() []string {
	slots := o.config.MaxConcurrent - len(o.running)
	if slots <= 0 {
		return nil
	}
	ready := o.ReadyTasks()
	if len(ready) > slots {
		ready = ready[:slots]
	}
	return ready
}

// StartTask moves a ready task into the running set. Returns false and
// changes nothing when the task is not ready. The concurrency budget is
// deliberately not enforced here; see CanStartMore.
func (o *Orchestrator) StartTask(id string) bool {
	if !o.IsTaskReady(id) {
		o.logger.Debug("start rejected, task not ready", zap.String("task", id))
		return false
	}
	o.running[id] = struct{}{}
	o.graph.Node(id).Status = taskgraph.StatusRunning
	o.logger.Info("task started", zap.String("task", id))
	return true
}

// CompleteTask moves id from running to completed and refreshes the
// advisory ready status of any direct dependent that can now start.
// Unknown ids are a no-op returning false.
func (o *Orchestrator) CompleteTask(id string) bool {
	node := o.graph.Node(id)
	if node == nil {
		o.logger.Debug("complete ignored, unknown task", zap.String("task", id))
		return false
	}
	delete(o.running, id)
	o.completed[id] = struct{}{}
	node.Status = taskgraph.StatusCompleted

	for _, dep := range node.Dependents {
		depNode := o.graph.Node(dep)
		if depNode.Status == taskgraph.StatusPending && o.IsTaskReady(dep) {
			depNode.Status = taskgraph.StatusReady
		}
	}

	o.logger.Info("task completed",
		zap.String("task", id),
		zap.Int("progress_pct", o.Progress()))
	return true
}

// FailTask moves id from running to failed, then cascades: every node
// reachable through Dependents that is not already completed or failed is
// marked blocked. Blocked tasks stay excluded from readiness until Reset
// or LoadState. Unknown ids are a no-op returning false.
func (o *Orchestrator) FailTask(id string) bool {
	node := o.graph.Node(id)
	if node == nil {
		o.logger.Debug("fail ignored, unknown task", zap.String("task", id))
		return false
	}
	delete(o.running, id)
	o.failed[id] = struct{}{}
	node.Status = taskgraph.StatusFailed

	blocked := o.cascadeFrom(id)
	o.logger.Warn("task failed",
		zap.String("task", id),
		zap.Int("blocked", blocked))
	return true
}

// cascadeFrom walks Dependents from id, marking the display cache of every
// reachable non-terminal node as blocked. Returns the number of nodes
// newly marked.
func (o *Orchestrator) cascadeFrom(id string) int {
	marked := 0
	stack := append([]string(nil), o.graph.Node(id).Dependents...)
	seen := make(map[string]bool)

	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[next] {
			continue
		}
		seen[next] = true

		node := o.graph.Node(next)
		if node == nil {
			continue
		}
		if _, ok := o.completed[next]; ok {
			continue
		}
		if _, ok := o.failed[next]; ok {
			continue
		}
		if node.Status != taskgraph.StatusBlocked {
			node.Status = taskgraph.StatusBlocked
			marked++
		}
		stack = append(stack, node.Dependents...)
	}
	return marked
}

// blockedSet computes the authoritative blocked set from the failed set.
// Blocking is derived, never stored: a node is blocked when any failed
// node reaches it through Dependents and it is not itself terminal.
func (o *Orchestrator) blockedSet() map[string]bool {
	blocked := make(map[string]bool)
	var stack []string
	for id := range o.failed {
		if node := o.graph.Node(id); node != nil {
			stack = append(stack, node.Dependents...)
		}
	}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if blocked[next] {
			continue
		}
		node := o.graph.Node(next)
		if node == nil {
			continue
		}
		if _, ok := o.completed[next]; ok {
			continue
		}
		if _, ok := o.failed[next]; ok {
			continue
		}
		blocked[next] = true
		stack = append(stack, node.Dependents...)
	}
	return blocked
}

// IsComplete reports whether every task has reached a terminal state.
func (o *Orchestrator) IsComplete() bool {
	return len(o.completed)+len(o.failed) == o.graph.Len()
}

// Progress returns the completed percentage, rounded.
func (o *Orchestrator) Progress() int {
	total := o.graph.Len()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(len(o.completed)) / float64(total) * 100))
}

// Snapshot summarizes runtime state for reporting surfaces.
type Snapshot struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Running   int `json:"running"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
	Blocked   int `json:"blocked"`
	Progress  int `json:"progress"`
}

// Status returns current counts and progress.
func (o *Orchestrator) Status() Snapshot {
	blocked := len(o.blockedSet())
	s := Snapshot{
		Total:     o.graph.Len(),
		Completed: len(o.completed),
		Running:   len(o.running),
		Failed:    len(o.failed),
		Blocked:   blocked,
		Progress:  o.Progress(),
	}
	s.Pending = s.Total - s.Completed - s.Running - s.Failed - s.Blocked
	return s
}

// CompletedIDs returns the completed set in declaration order.
func (o *Orchestrator) CompletedIDs() []string {
	return o.idsInOrder(o.completed)
}

// FailedIDs returns the failed set in declaration order.
func (o *Orchestrator) FailedIDs() []string {
	return o.idsInOrder(o.failed)
}

func (o *Orchestrator) idsInOrder(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for _, id := range o.graph.Order {
		if _, ok := set[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Reset clears all runtime state and resets every display status to
// pending.
func (o *Orchestrator) Reset() {
	o.running = make(map[string]struct{})
	o.completed = make(map[string]struct{})
	o.failed = make(map[string]struct{})
	for _, id := range o.graph.Order {
		o.graph.Node(id).Status = taskgraph.StatusPending
	}
	o.logger.Info("orchestrator reset")
}

// LoadState rehydrates from persisted completed/failed id lists. The
// result is identical to replaying the live CompleteTask/FailTask sequence
// that produced the lists: terminal statuses are restored and the blocking
// cascade is re-run from every failed id. Unknown ids are skipped.
func (o *Orchestrator) LoadState(completedIDs, failedIDs []string) {
	o.Reset()

	for _, id := range completedIDs {
		node := o.graph.Node(id)
		if node == nil {
			o.logger.Warn("skipping unknown completed task in saved state",
				zap.String("task", id))
			continue
		}
		o.completed[id] = struct{}{}
		node.Status = taskgraph.StatusCompleted
	}
	for _, id := range failedIDs {
		node := o.graph.Node(id)
		if node == nil {
			o.logger.Warn("skipping unknown failed task in saved state",
				zap.String("task", id))
			continue
		}
		o.failed[id] = struct{}{}
		node.Status = taskgraph.StatusFailed
	}

	blocked := 0
	for _, id := range o.idsInOrder(o.failed) {
		blocked += o.cascadeFrom(id)
	}

	o.logger.Info("state loaded",
		zap.Int("completed", len(o.completed)),
		zap.Int("failed", len(o.failed)),
		zap.Int("blocked", blocked))
}
