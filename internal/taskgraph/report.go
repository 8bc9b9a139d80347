package taskgraph

import (
	"fmt"
	"strings"
)

// Render produces the textual execution-plan report consumed by reporting
// surfaces.
func (p *ExecutionPlan) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Execution plan: %d levels\n", len(p.Levels))
	if len(p.CriticalPath) > 0 {
		fmt.Fprintf(&b, "Critical path: %s\n", strings.Join(p.CriticalPath, " -> "))
	}
	fmt.Fprintf(&b, "Estimated duration: %.0f min\n", p.EstimatedDuration)
	fmt.Fprintf(&b, "Parallel opportunities: %d\n", p.ParallelOpportunities)
	for i, level := range p.Levels {
		fmt.Fprintf(&b, "Level %d: %s\n", i+1, strings.Join(level, ", "))
	}

	return b.String()
}

// Mermaid exports the graph in Mermaid flowchart syntax: one labeled box
// per node, critical-path nodes tagged with the critical style class, one
// line per dependency edge, and a trailing classDef declaration.
func Mermaid(g *Graph) string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	for _, id := range g.Order {
		node := g.Nodes[id]
		label := node.Description
		if label == "" {
			label = id
		}
		if node.OnCriticalPath {
			fmt.Fprintf(&b, "    %s[\"%s\"]:::critical\n", id, mermaidEscape(label))
		} else {
			fmt.Fprintf(&b, "    %s[\"%s\"]\n", id, mermaidEscape(label))
		}
	}

	for _, id := range g.Order {
		for _, dep := range g.Nodes[id].Dependencies {
			if _, ok := g.Nodes[dep]; !ok {
				continue
			}
			fmt.Fprintf(&b, "    %s --> %s\n", dep, id)
		}
	}

	b.WriteString("    classDef critical fill:#f96,stroke:#333,stroke-width:2px\n")
	return b.String()
}

// mermaidEscape strips characters that would terminate a Mermaid label.
func mermaidEscape(s string) string {
	r := strings.NewReplacer("\"", "'", "\n", " ", "[", "(", "]", ")")
	return r.Replace(s)
}
