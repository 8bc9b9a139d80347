package taskgraph

import (
	"go.uber.org/zap"
)

// FindCriticalPath returns the dominant dependency chain in
// root-to-terminus order.
//
// The forward pass computes finish(n) = duration(n) + max(finish(d) for d
// in deps(n)), 0 for the max term when n has no dependencies, memoized per
// node, with the same visiting guard as ComputeDepths (cycles log a
// warning and contribute 0). Candidate termini are nodes with no
// dependents; the terminus is the candidate with the largest finish time.
// The path is then traced backward, at each step following the dependency
// with the largest finish time.
//
// Tie-breaking is explicit and deterministic: among equal finish times the
// first candidate in declared order wins, both for the terminus (Order)
// and for each backward step (the node's declared dependency order).
func FindCriticalPath(g *Graph, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(g.Nodes) == 0 {
		return nil
	}

	finish := make(map[string]float64, len(g.Nodes))
	visiting := make(map[string]bool)

	var walk func(id string) float64
	walk = func(id string) float64 {
		node, ok := g.Nodes[id]
		if !ok {
			return 0
		}
		if f, done := finish[id]; done {
			return f
		}
		if visiting[id] {
			logger.Warn("dependency cycle detected in critical path pass",
				zap.String("task", id))
			return 0
		}
		visiting[id] = true

		longest := 0.0
		for _, dep := range node.Dependencies {
			if f := walk(dep); f > longest {
				longest = f
			}
		}

		delete(visiting, id)
		finish[id] = node.EstimatedDuration + longest
		return finish[id]
	}

	for _, id := range g.Order {
		walk(id)
	}

	// Terminus: no-dependents node with the maximum finish time.
	terminus := ""
	best := -1.0
	for _, id := range g.Order {
		if len(g.Nodes[id].Dependents) > 0 {
			continue
		}
		if finish[id] > best {
			terminus = id
			best = finish[id]
		}
	}
	if terminus == "" {
		// Every node has dependents: the graph is one big cycle.
		logger.Warn("no terminal node found, graph is fully cyclic")
		return nil
	}

	// Backward trace, following the max-finish dependency at each step.
	// The seen guard terminates the trace if it re-enters a cycle.
	var path []string
	seen := make(map[string]bool)
	for id := terminus; id != "" && !seen[id]; {
		seen[id] = true
		path = append(path, id)

		next := ""
		nextFinish := -1.0
		for _, dep := range g.Nodes[id].Dependencies {
			if _, ok := g.Nodes[dep]; !ok {
				continue
			}
			if finish[dep] > nextFinish {
				next = dep
				nextFinish = finish[dep]
			}
		}
		id = next
	}

	// Reverse into root-to-terminus order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// CriticalPathDuration sums the durations of the nodes on path.
func CriticalPathDuration(g *Graph, path []string) float64 {
	total := 0.0
	for _, id := range path {
		if node := g.Nodes[id]; node != nil {
			total += node.EstimatedDuration
		}
	}
	return total
}
