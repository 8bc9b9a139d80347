package taskgraph

import (
	"go.uber.org/zap"
)

// TopologicalSort returns one valid linear execution order.
//
// DFS postorder: every dependency is emitted before its dependent. For an
// acyclic graph the result contains every node exactly once. When a cycle
// is detected the offending branch is abandoned with a warning and the
// function returns whatever order it could establish; completeness is not
// guaranteed for cyclic input. That partial-result contract is deliberate,
// workflow definitions come from unreliable sources and a best-effort
// order is more useful than a hard failure.
func TopologicalSort(g *Graph, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}

	order := make([]string, 0, len(g.Nodes))
	visited := make(map[string]bool, len(g.Nodes))
	visiting := make(map[string]bool)

	var visit func(id string) bool
	visit = func(id string) bool {
		node, ok := g.Nodes[id]
		if !ok {
			return true
		}
		if visited[id] {
			return true
		}
		if visiting[id] {
			logger.Warn("dependency cycle detected, abandoning branch",
				zap.String("task", id))
			return false
		}
		visiting[id] = true

		ok = true
		for _, dep := range node.Dependencies {
			if !visit(dep) {
				ok = false
				break
			}
		}

		delete(visiting, id)
		if !ok {
			return false
		}
		visited[id] = true
		order = append(order, id)
		return true
	}

	for _, id := range g.Order {
		visit(id)
	}
	return order
}
