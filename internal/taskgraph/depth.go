package taskgraph

import (
	"go.uber.org/zap"
)

// ComputeDepths fills in Node.Depth for every node in the graph.
//
// depth(n) = 1 + max(depth(d) for d in deps(n)), or 0 when n has no
// dependencies. The computation is a memoized depth-first walk with an
// active-recursion guard: a node re-entered while still being computed is
// part of a cycle, gets depth 0, and a warning is logged. Dependencies on
// unknown ids contribute nothing.
func ComputeDepths(g *Graph, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	visited := make(map[string]bool, len(g.Nodes))
	visiting := make(map[string]bool)

	var walk func(id string) int
	walk = func(id string) int {
		node, ok := g.Nodes[id]
		if !ok {
			return -1
		}
		if visited[id] {
			return node.Depth
		}
		if visiting[id] {
			logger.Warn("dependency cycle detected, using depth 0",
				zap.String("task", id))
			return 0
		}
		visiting[id] = true

		depth := 0
		for _, dep := range node.Dependencies {
			if d := walk(dep); d >= 0 && d+1 > depth {
				depth = d + 1
			}
		}

		delete(visiting, id)
		visited[id] = true
		node.Depth = depth
		return depth
	}

	for _, id := range g.Order {
		walk(id)
	}
}
