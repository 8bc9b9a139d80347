package taskgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// diamondPhases returns the A -> {B, C} -> D fixture used across the
// package tests: durations A=5, B=10, C=8, D=5.
func diamondPhases() []Phase {
	return []Phase{
		{
			ID:   "setup",
			Name: "Setup",
			Tasks: []Task{
				{ID: "A", Description: "scaffold project", EstimatedDuration: 5},
			},
		},
		{
			ID:   "build",
			Name: "Build",
			Tasks: []Task{
				{ID: "B", Description: "implement core", EstimatedDuration: 10, Dependencies: []string{"A"}},
				{ID: "C", Description: "implement api", EstimatedDuration: 8, Dependencies: []string{"A"}},
			},
		},
		{
			ID:   "verify",
			Name: "Verify",
			Tasks: []Task{
				{ID: "D", Description: "integration tests", EstimatedDuration: 5, Dependencies: []string{"B", "C"}},
			},
		},
	}
}

func TestBuild_Diamond(t *testing.T) {
	g := Build(diamondPhases(), zap.NewNop())

	require.Equal(t, 4, g.Len())
	assert.Equal(t, []string{"A", "B", "C", "D"}, g.Order)
	assert.Equal(t, 28.0, g.TotalDuration)

	// Dependents must be the exact transpose of dependencies.
	assert.Equal(t, []string{"B", "C"}, g.Node("A").Dependents)
	assert.Equal(t, []string{"D"}, g.Node("B").Dependents)
	assert.Equal(t, []string{"D"}, g.Node("C").Dependents)
	assert.Empty(t, g.Node("D").Dependents)

	// Every node starts pending.
	for _, id := range g.Order {
		assert.Equal(t, StatusPending, g.Node(id).Status)
	}

	assert.Equal(t, "build", g.Node("B").PhaseID)
}

func TestBuild_Depths(t *testing.T) {
	g := Build(diamondPhases(), zap.NewNop())

	assert.Equal(t, 0, g.Node("A").Depth)
	assert.Equal(t, 1, g.Node("B").Depth)
	assert.Equal(t, 1, g.Node("C").Depth)
	assert.Equal(t, 2, g.Node("D").Depth)
}

func TestBuild_UnknownDependencySkipped(t *testing.T) {
	phases := []Phase{
		{ID: "p1", Tasks: []Task{
			{ID: "A", EstimatedDuration: 1, Dependencies: []string{"ghost"}},
			{ID: "B", EstimatedDuration: 1, Dependencies: []string{"A"}},
		}},
	}

	g := Build(phases, zap.NewNop())

	require.Equal(t, 2, g.Len())
	// The dangling reference creates no reverse edge and no node.
	assert.Nil(t, g.Node("ghost"))
	assert.Equal(t, []string{"B"}, g.Node("A").Dependents)
	// The dangling dep contributes nothing to depth.
	assert.Equal(t, 0, g.Node("A").Depth)
	assert.Equal(t, 1, g.Node("B").Depth)
}

func TestBuild_DuplicateIDKeepsFirst(t *testing.T) {
	phases := []Phase{
		{ID: "p1", Tasks: []Task{
			{ID: "A", Description: "first", EstimatedDuration: 3},
			{ID: "A", Description: "second", EstimatedDuration: 7},
		}},
	}

	g := Build(phases, zap.NewNop())

	require.Equal(t, 1, g.Len())
	assert.Equal(t, "first", g.Node("A").Description)
	assert.Equal(t, 3.0, g.TotalDuration)
}

func TestBuild_EmptyInput(t *testing.T) {
	g := Build(nil, nil)

	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.CriticalPath)
	assert.Equal(t, 0.0, g.TotalDuration)
}

func TestComputeDepths_CycleFallsBackToZero(t *testing.T) {
	phases := []Phase{
		{ID: "p1", Tasks: []Task{
			{ID: "A", EstimatedDuration: 1, Dependencies: []string{"B"}},
			{ID: "B", EstimatedDuration: 1, Dependencies: []string{"A"}},
			{ID: "C", EstimatedDuration: 1, Dependencies: []string{"B"}},
		}},
	}

	// Build must not hang or panic on the A <-> B cycle.
	g := Build(phases, zap.NewNop())

	require.Equal(t, 3, g.Len())
	// C sits above the cycle, so its depth is still derived from B.
	assert.Equal(t, g.Node("B").Depth+1, g.Node("C").Depth)
}

func TestComputeDepths_DepthIncreasesAlongChains(t *testing.T) {
	phases := []Phase{
		{ID: "p1", Tasks: []Task{
			{ID: "t1", EstimatedDuration: 1},
			{ID: "t2", EstimatedDuration: 1, Dependencies: []string{"t1"}},
			{ID: "t3", EstimatedDuration: 1, Dependencies: []string{"t2"}},
			{ID: "t4", EstimatedDuration: 1, Dependencies: []string{"t3", "t1"}},
		}},
	}

	g := Build(phases, zap.NewNop())

	for _, id := range g.Order {
		node := g.Node(id)
		for _, dep := range node.Dependencies {
			assert.Greater(t, node.Depth, g.Node(dep).Depth,
				"depth must strictly increase from %s to %s", dep, id)
		}
	}
}
