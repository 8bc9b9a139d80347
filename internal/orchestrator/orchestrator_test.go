package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workflowd/internal/taskgraph"
)

// diamondGraph builds the A -> {B, C} -> D fixture: durations A=5, B=10,
// C=8, D=5, so the critical path is A -> B -> D.
func diamondGraph(t *testing.T) *taskgraph.Graph {
	t.Helper()
	phases := []taskgraph.Phase{
		{ID: "setup", Tasks: []taskgraph.Task{
			{ID: "A", EstimatedDuration: 5},
		}},
		{ID: "build", Tasks: []taskgraph.Task{
			{ID: "B", EstimatedDuration: 10, Dependencies: []string{"A"}},
			{ID: "C", EstimatedDuration: 8, Dependencies: []string{"A"}},
		}},
		{ID: "verify", Tasks: []taskgraph.Task{
			{ID: "D", EstimatedDuration: 5, Dependencies: []string{"B", "C"}},
		}},
	}
	return taskgraph.Build(phases, zap.NewNop())
}

func newDiamond(t *testing.T, cfg Config) *Orchestrator {
	t.Helper()
	return New(diamondGraph(t), cfg, zap.NewNop())
}

func TestIsTaskReady(t *testing.T) {
	o := newDiamond(t, DefaultConfig())

	assert.True(t, o.IsTaskReady("A"))
	assert.False(t, o.IsTaskReady("B"), "dependency A not completed")
	assert.False(t, o.IsTaskReady("unknown"))

	require.True(t, o.StartTask("A"))
	assert.False(t, o.IsTaskReady("A"), "running tasks are not ready")

	require.True(t, o.CompleteTask("A"))
	assert.False(t, o.IsTaskReady("A"), "completed tasks are not ready")
	assert.True(t, o.IsTaskReady("B"))
	assert.True(t, o.IsTaskReady("C"))
	assert.False(t, o.IsTaskReady("D"))
}

func TestReadyTasks_CriticalPathFirst(t *testing.T) {
	o := newDiamond(t, Config{MaxConcurrent: 3, PrioritizeCriticalPath: true})

	require.True(t, o.StartTask("A"))
	require.True(t, o.CompleteTask("A"))

	// B is on the critical path, so it sorts before C despite equal
	// depth.
	assert.Equal(t, []string{"B", "C"}, o.ReadyTasks())
}

func TestReadyTasks_DepthOrderWithoutPriority(t *testing.T) {
	o := newDiamond(t, Config{MaxConcurrent: 3, PrioritizeCriticalPath: false})

	require.True(t, o.StartTask("A"))
	require.True(t, o.CompleteTask("A"))

	// Equal depth keeps declaration order.
	assert.Equal(t, []string{"B", "C"}, o.ReadyTasks())
}

func TestConcurrencyLimit_Advisory(t *testing.T) {
	o := newDiamond(t, Config{MaxConcurrent: 1, PrioritizeCriticalPath: true})

	require.True(t, o.StartTask("A"))
	assert.False(t, o.CanStartMore())
	assert.Empty(t, o.NextTasks())

	require.True(t, o.CompleteTask("A"))
	assert.True(t, o.CanStartMore())

	// Both B and C are ready, but the budget admits exactly one.
	next := o.NextTasks()
	require.Len(t, next, 1)
	assert.Contains(t, []string{"B", "C"}, next[0])

	// StartTask itself does not enforce the budget; that is the
	// caller's job via CanStartMore/NextTasks.
	require.True(t, o.StartTask("B"))
	assert.False(t, o.CanStartMore())
	assert.True(t, o.StartTask("C"), "capacity is advisory, not enforced")
}

func TestStartTask_RejectsNotReady(t *testing.T) {
	o := newDiamond(t, DefaultConfig())

	assert.False(t, o.StartTask("B"), "dependencies not completed")
	assert.False(t, o.StartTask("nope"))

	snap := o.Status()
	assert.Equal(t, 0, snap.Running)
}

func TestCompleteTask_RefreshesDependentStatus(t *testing.T) {
	o := newDiamond(t, DefaultConfig())
	g := o.Graph()

	require.True(t, o.StartTask("A"))
	require.True(t, o.CompleteTask("A"))

	// Advisory cache only: B and C display as ready now.
	assert.Equal(t, taskgraph.StatusReady, g.Node("B").Status)
	assert.Equal(t, taskgraph.StatusReady, g.Node("C").Status)
	assert.Equal(t, taskgraph.StatusPending, g.Node("D").Status)
}

func TestCompleteTask_UnknownIsNoOp(t *testing.T) {
	o := newDiamond(t, DefaultConfig())

	assert.False(t, o.CompleteTask("ghost"))
	assert.False(t, o.FailTask("ghost"))
	assert.Equal(t, 0, o.Status().Completed)
}

func TestFailureCascade(t *testing.T) {
	o := newDiamond(t, DefaultConfig())
	g := o.Graph()

	require.True(t, o.StartTask("A"))
	require.True(t, o.CompleteTask("A"))
	require.True(t, o.StartTask("B"))
	require.True(t, o.FailTask("B"))

	// C does not depend on B and stays ready.
	assert.Equal(t, []string{"C"}, o.ReadyTasks())

	// D is downstream of the failure: blocked, permanently not ready.
	assert.Equal(t, taskgraph.StatusBlocked, g.Node("D").Status)
	assert.False(t, o.IsTaskReady("D"))

	require.True(t, o.StartTask("C"))
	require.True(t, o.CompleteTask("C"))
	assert.Empty(t, o.ReadyTasks(), "D must never appear as ready")

	snap := o.Status()
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 2, snap.Completed)
	assert.Equal(t, 1, snap.Blocked)
}

func TestFailureCascade_SkipsCompletedNodes(t *testing.T) {
	phases := []taskgraph.Phase{
		{ID: "p1", Tasks: []taskgraph.Task{
			{ID: "a", EstimatedDuration: 1},
			{ID: "b", EstimatedDuration: 1, Dependencies: []string{"a"}},
			{ID: "c", EstimatedDuration: 1, Dependencies: []string{"b"}},
		}},
	}
	g := taskgraph.Build(phases, zap.NewNop())
	o := New(g, DefaultConfig(), zap.NewNop())

	require.True(t, o.StartTask("a"))
	require.True(t, o.CompleteTask("a"))
	require.True(t, o.StartTask("b"))
	require.True(t, o.CompleteTask("b"))

	// Failing a after the fact must not re-mark completed downstream
	// nodes.
	o.FailTask("a")
	assert.Equal(t, taskgraph.StatusCompleted, g.Node("b").Status)
}

func TestIsCompleteAndProgress(t *testing.T) {
	o := newDiamond(t, DefaultConfig())

	assert.False(t, o.IsComplete())
	assert.Equal(t, 0, o.Progress())

	require.True(t, o.StartTask("A"))
	require.True(t, o.CompleteTask("A"))
	assert.Equal(t, 25, o.Progress())

	require.True(t, o.StartTask("B"))
	require.True(t, o.FailTask("B"))
	assert.False(t, o.IsComplete(), "blocked D is not terminal")

	require.True(t, o.StartTask("C"))
	require.True(t, o.CompleteTask("C"))
	assert.Equal(t, 50, o.Progress())

	// Terminal via explicit failure of the blocked task's executor is
	// not possible (it never starts); completing the set happens only
	// when every node is completed or failed.
	assert.False(t, o.IsComplete())
}

func TestIsComplete_AllTerminal(t *testing.T) {
	o := newDiamond(t, DefaultConfig())

	require.True(t, o.StartTask("A"))
	require.True(t, o.CompleteTask("A"))
	require.True(t, o.StartTask("B"))
	require.True(t, o.CompleteTask("B"))
	require.True(t, o.StartTask("C"))
	require.True(t, o.CompleteTask("C"))
	require.True(t, o.StartTask("D"))
	require.True(t, o.CompleteTask("D"))

	assert.True(t, o.IsComplete())
	assert.Equal(t, 100, o.Progress())
}

func TestReset(t *testing.T) {
	o := newDiamond(t, DefaultConfig())
	g := o.Graph()

	require.True(t, o.StartTask("A"))
	require.True(t, o.CompleteTask("A"))
	require.True(t, o.StartTask("B"))
	require.True(t, o.FailTask("B"))

	o.Reset()

	snap := o.Status()
	assert.Equal(t, Snapshot{Total: 4, Pending: 4}, snap)
	for _, id := range g.Order {
		assert.Equal(t, taskgraph.StatusPending, g.Node(id).Status)
	}
	assert.True(t, o.IsTaskReady("A"))
}

func TestLoadState_MatchesLiveReplay(t *testing.T) {
	// Live sequence: complete A, fail B, complete C.
	live := newDiamond(t, DefaultConfig())
	require.True(t, live.StartTask("A"))
	require.True(t, live.CompleteTask("A"))
	require.True(t, live.StartTask("B"))
	require.True(t, live.FailTask("B"))
	require.True(t, live.StartTask("C"))
	require.True(t, live.CompleteTask("C"))

	// Rehydrate a fresh orchestrator from the persisted id lists.
	restored := newDiamond(t, DefaultConfig())
	restored.LoadState(live.CompletedIDs(), live.FailedIDs())

	assert.Equal(t, live.Status(), restored.Status())
	assert.Equal(t, live.ReadyTasks(), restored.ReadyTasks())
	assert.False(t, restored.IsTaskReady("D"), "blocking cascade must replay")
	assert.Equal(t, taskgraph.StatusBlocked, restored.Graph().Node("D").Status)
}

func TestLoadState_SkipsUnknownIDs(t *testing.T) {
	o := newDiamond(t, DefaultConfig())

	o.LoadState([]string{"A", "ghost"}, []string{"phantom"})

	snap := o.Status()
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, 0, snap.Failed)
	assert.True(t, o.IsTaskReady("B"))
}

func TestIndependentInstancesShareNoState(t *testing.T) {
	a := newDiamond(t, DefaultConfig())
	b := newDiamond(t, DefaultConfig())

	require.True(t, a.StartTask("A"))
	require.True(t, a.CompleteTask("A"))

	assert.Equal(t, 0, b.Status().Completed)
	assert.False(t, b.IsTaskReady("B"))
}

func TestEmptyGraph(t *testing.T) {
	g := taskgraph.Build(nil, zap.NewNop())
	o := New(g, DefaultConfig(), zap.NewNop())

	assert.True(t, o.IsComplete())
	assert.Equal(t, 0, o.Progress())
	assert.Empty(t, o.ReadyTasks())
}
