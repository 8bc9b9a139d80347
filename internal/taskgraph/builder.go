package taskgraph

import (
	"go.uber.org/zap"
)

// Build constructs a Graph from the declared phases.
//
// Construction is two passes: one node per task, then a walk over every
// node's dependency list appending the node to each dependency's
// Dependents. Dependencies pointing at unknown ids are skipped (no reverse
// edge is created) and logged at debug level; acyclicity is not checked
// here, consumers tolerate cycles with their own guards.
//
// After the structural passes, Build fills in the derived analysis fields:
// per-node depth, the critical path, and the aggregate total duration.
//
// A nil logger is replaced with a no-op logger.
func Build(phases []Phase, logger *zap.Logger) *Graph {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Graph{
		Nodes:  make(map[string]*Node),
		Phases: phases,
	}

	for _, phase := range phases {
		for _, task := range phase.Tasks {
			if _, exists := g.Nodes[task.ID]; exists {
				logger.Warn("duplicate task id, keeping first declaration",
					zap.String("task", task.ID),
					zap.String("phase", phase.ID))
				continue
			}
			deps := make([]string, len(task.Dependencies))
			copy(deps, task.Dependencies)

			g.Nodes[task.ID] = &Node{
				ID:                task.ID,
				PhaseID:           phase.ID,
				Description:       task.Description,
				EstimatedDuration: task.EstimatedDuration,
				Optional:          task.Optional,
				Dependencies:      deps,
				Status:            StatusPending,
			}
			g.Order = append(g.Order, task.ID)
			g.TotalDuration += task.EstimatedDuration
		}
	}

	// Reverse edges. Walking Order keeps Dependents in declaration order.
	for _, id := range g.Order {
		node := g.Nodes[id]
		for _, dep := range node.Dependencies {
			target, ok := g.Nodes[dep]
			if !ok {
				logger.Debug("skipping unknown dependency",
					zap.String("task", id),
					zap.String("dependency", dep))
				continue
			}
			target.Dependents = append(target.Dependents, id)
		}
	}

	ComputeDepths(g, logger)

	g.CriticalPath = FindCriticalPath(g, logger)
	for _, id := range g.CriticalPath {
		g.Nodes[id].OnCriticalPath = true
	}

	logger.Debug("task graph built",
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("phases", len(phases)),
		zap.Int("critical_path_len", len(g.CriticalPath)),
		zap.Float64("total_duration_min", g.TotalDuration))

	return g
}
