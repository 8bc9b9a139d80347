package taskgraph

import (
	"go.uber.org/zap"
)

// ExecutionPlan partitions the graph into parallel-eligible levels.
type ExecutionPlan struct {
	// Levels holds node ids grouped so that every node's dependencies
	// sit in strictly earlier levels. Nodes within a level may run
	// concurrently.
	Levels [][]string `json:"levels"`

	// CriticalPath is the dominant chain, copied from the graph.
	CriticalPath []string `json:"critical_path"`

	// EstimatedDuration is the sum of durations along the critical path
	// in minutes. A deliberate simplification of the true makespan.
	EstimatedDuration float64 `json:"estimated_duration"`

	// ParallelOpportunities sums max(0, len(level)-1) over all levels.
	ParallelOpportunities int `json:"parallel_opportunities"`
}

// NewExecutionPlan derives a leveled plan from the graph.
//
// Greedy leveling: each pass collects every unscheduled node whose
// dependencies are all scheduled. A pass that adds nothing terminates the
// loop, so nodes made unreachable by cycles or dangling dependencies are
// silently excluded from the plan instead of looping forever; the
// exclusion is logged.
func NewExecutionPlan(g *Graph, logger *zap.Logger) *ExecutionPlan {
	if logger == nil {
		logger = zap.NewNop()
	}

	plan := &ExecutionPlan{
		CriticalPath:      g.CriticalPath,
		EstimatedDuration: CriticalPathDuration(g, g.CriticalPath),
	}

	scheduled := make(map[string]bool, len(g.Nodes))
	for len(scheduled) < len(g.Nodes) {
		var level []string
		for _, id := range g.Order {
			if scheduled[id] {
				continue
			}
			if depsScheduled(g, g.Nodes[id], scheduled) {
				level = append(level, id)
			}
		}
		if len(level) == 0 {
			logger.Warn("execution plan incomplete, unreachable nodes excluded",
				zap.Int("scheduled", len(scheduled)),
				zap.Int("total", len(g.Nodes)))
			break
		}
		for _, id := range level {
			scheduled[id] = true
		}
		plan.Levels = append(plan.Levels, level)
		if extra := len(level) - 1; extra > 0 {
			plan.ParallelOpportunities += extra
		}
	}

	return plan
}

// depsScheduled reports whether every known dependency of node is already
// scheduled. Dangling dependency ids do not hold a node back.
func depsScheduled(g *Graph, node *Node, scheduled map[string]bool) bool {
	for _, dep := range node.Dependencies {
		if _, ok := g.Nodes[dep]; !ok {
			continue
		}
		if !scheduled[dep] {
			return false
		}
	}
	return true
}
