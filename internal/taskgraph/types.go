package taskgraph

// Status is the advisory display state of a task node.
//
// Status is a cache written by the orchestrator for reporting surfaces.
// It is never authoritative: readiness and blocking decisions are made
// from the orchestrator's running/completed/failed sets.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReady     Status = "ready"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusBlocked   Status = "blocked"
)

// Task is a declared unit of work inside a phase.
type Task struct {
	// ID must be unique across the whole workflow, not just its phase.
	ID string `json:"id"`

	// Description is a human-readable summary shown in reports.
	Description string `json:"description"`

	// EstimatedDuration is the estimated effort in minutes. Positive.
	EstimatedDuration float64 `json:"estimated_duration"`

	// Dependencies lists task ids that must complete first. May cross
	// phase boundaries.
	Dependencies []string `json:"dependencies,omitempty"`

	// Optional marks tasks whose failure the caller may choose to ignore.
	Optional bool `json:"optional,omitempty"`
}

// Phase is an ordered group of tasks.
type Phase struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`
}

// Node is the derived graph node for a single task.
type Node struct {
	ID                string  `json:"id"`
	PhaseID           string  `json:"phase_id"`
	Description       string  `json:"description"`
	EstimatedDuration float64 `json:"estimated_duration"`
	Optional          bool    `json:"optional,omitempty"`

	// Dependencies is a copy of the declared dependency list, in
	// declared order.
	Dependencies []string `json:"dependencies,omitempty"`

	// Dependents is the computed reverse edge set: every node that
	// declares this node as a dependency. Always the exact transpose of
	// Dependencies across the whole graph.
	Dependents []string `json:"dependents,omitempty"`

	// Status is the advisory display cache. See Status.
	Status Status `json:"status"`

	// Depth is the longest dependency chain below this node. Roots have
	// depth 0; cyclic nodes fall back to 0.
	Depth int `json:"depth"`

	// OnCriticalPath is true when the node lies on the dominant
	// (longest-duration) dependency chain.
	OnCriticalPath bool `json:"on_critical_path"`
}

// Graph is the immutable dependency graph for one workflow.
type Graph struct {
	// Nodes maps task id to node.
	Nodes map[string]*Node `json:"nodes"`

	// Order holds node ids in declaration order (phase order, then task
	// order within the phase). All iteration that must be deterministic
	// walks Order instead of the Nodes map.
	Order []string `json:"order"`

	// Phases preserves the declared phase list.
	Phases []Phase `json:"phases"`

	// CriticalPath is the dominant chain in root-to-terminus order.
	CriticalPath []string `json:"critical_path"`

	// TotalDuration is the sum of all node durations in minutes. It is
	// the serial cost, not the makespan.
	TotalDuration float64 `json:"total_duration"`
}

// Node returns the node for id, or nil when id is unknown.
func (g *Graph) Node(id string) *Node {
	return g.Nodes[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}
