package taskgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewExecutionPlan_Diamond(t *testing.T) {
	g := Build(diamondPhases(), zap.NewNop())
	plan := NewExecutionPlan(g, zap.NewNop())

	require.Equal(t, [][]string{{"A"}, {"B", "C"}, {"D"}}, plan.Levels)
	assert.Equal(t, 1, plan.ParallelOpportunities)
	assert.Equal(t, 20.0, plan.EstimatedDuration)
	assert.Equal(t, []string{"A", "B", "D"}, plan.CriticalPath)
}

func TestNewExecutionPlan_DependenciesInEarlierLevels(t *testing.T) {
	phases := []Phase{
		{ID: "p1", Tasks: []Task{
			{ID: "a", EstimatedDuration: 1},
			{ID: "b", EstimatedDuration: 1, Dependencies: []string{"a"}},
			{ID: "c", EstimatedDuration: 1},
			{ID: "d", EstimatedDuration: 1, Dependencies: []string{"b", "c"}},
			{ID: "e", EstimatedDuration: 1, Dependencies: []string{"d"}},
		}},
	}
	g := Build(phases, zap.NewNop())
	plan := NewExecutionPlan(g, zap.NewNop())

	levelOf := make(map[string]int)
	for i, level := range plan.Levels {
		for _, id := range level {
			levelOf[id] = i
		}
	}
	require.Len(t, levelOf, g.Len())

	for _, id := range g.Order {
		for _, dep := range g.Node(id).Dependencies {
			assert.Less(t, levelOf[dep], levelOf[id],
				"%s must be leveled before %s", dep, id)
		}
	}
}

func TestNewExecutionPlan_CyclicNodesExcluded(t *testing.T) {
	phases := []Phase{
		{ID: "p1", Tasks: []Task{
			{ID: "ok", EstimatedDuration: 1},
			{ID: "x", EstimatedDuration: 1, Dependencies: []string{"y"}},
			{ID: "y", EstimatedDuration: 1, Dependencies: []string{"x"}},
		}},
	}
	g := Build(phases, zap.NewNop())
	plan := NewExecutionPlan(g, zap.NewNop())

	// The cycle members can never become schedulable; the loop guard
	// excludes them instead of spinning.
	require.Equal(t, [][]string{{"ok"}}, plan.Levels)
	assert.Equal(t, 0, plan.ParallelOpportunities)
}

func TestNewExecutionPlan_ParallelOpportunities(t *testing.T) {
	phases := []Phase{
		{ID: "p1", Tasks: []Task{
			{ID: "a", EstimatedDuration: 1},
			{ID: "b", EstimatedDuration: 1},
			{ID: "c", EstimatedDuration: 1},
			{ID: "d", EstimatedDuration: 1, Dependencies: []string{"a", "b", "c"}},
		}},
	}
	g := Build(phases, zap.NewNop())
	plan := NewExecutionPlan(g, zap.NewNop())

	// Level 1 holds three tasks (2 extra slots), level 2 holds one.
	assert.Equal(t, 2, plan.ParallelOpportunities)
}

func TestRender_Report(t *testing.T) {
	g := Build(diamondPhases(), zap.NewNop())
	plan := NewExecutionPlan(g, zap.NewNop())

	report := plan.Render()

	assert.Contains(t, report, "Execution plan: 3 levels")
	assert.Contains(t, report, "Critical path: A -> B -> D")
	assert.Contains(t, report, "Estimated duration: 20 min")
	assert.Contains(t, report, "Parallel opportunities: 1")
	assert.Contains(t, report, "Level 1: A")
	assert.Contains(t, report, "Level 2: B, C")
	assert.Contains(t, report, "Level 3: D")
}

func TestMermaid_Export(t *testing.T) {
	g := Build(diamondPhases(), zap.NewNop())
	out := Mermaid(g)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "graph TD", lines[0])

	// One labeled box per node; critical-path nodes carry the style tag.
	assert.Contains(t, out, `A["scaffold project"]:::critical`)
	assert.Contains(t, out, `B["implement core"]:::critical`)
	assert.Contains(t, out, `C["implement api"]`)
	assert.NotContains(t, out, `C["implement api"]:::critical`)

	// One line per dependency edge.
	assert.Contains(t, out, "A --> B")
	assert.Contains(t, out, "A --> C")
	assert.Contains(t, out, "B --> D")
	assert.Contains(t, out, "C --> D")

	// Trailing style-class declaration.
	assert.Contains(t, lines[len(lines)-1], "classDef critical")
}

func TestMermaid_EscapesLabels(t *testing.T) {
	phases := []Phase{
		{ID: "p1", Tasks: []Task{
			{ID: "a", Description: `say "hi" [now]`, EstimatedDuration: 1},
		}},
	}
	g := Build(phases, zap.NewNop())
	out := Mermaid(g)

	assert.Contains(t, out, `a["say 'hi' (now)"]`)
}
