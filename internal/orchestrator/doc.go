// Package orchestrator drives the runtime lifecycle of a task graph.
//
// # Overview
//
// The Orchestrator wraps an immutable taskgraph.Graph and owns three
// authoritative sets: running, completed, and failed. An external executor
// drives it through a cooperative start/complete/fail handshake; the
// orchestrator itself never performs I/O, spawns work, or blocks. Every
// method is a synchronous computation over in-memory sets, so results are
// fully deterministic for a fixed graph and call sequence.
//
// # Admission control
//
// MaxConcurrent bounds how many tasks should run at once, but StartTask
// does not enforce it. Admission control is advisory: callers consult
// CanStartMore or NextTasks before starting work. This keeps the
// orchestrator a pure decision/bookkeeping component and leaves capacity
// policy with the executor.
//
// # Failure cascade
//
// FailTask marks every task transitively downstream of the failure as
// blocked. Blocked tasks never become ready again until Reset or
// LoadState. Readiness and blocking are always computed from the three
// sets; the Status field on graph nodes is a display cache refreshed as a
// courtesy to reporting surfaces.
//
// # Persistence
//
// The orchestrator does not serialize itself. The surrounding system
// persists the completed and failed id lists and rehydrates with
// LoadState, which reproduces exactly the state of replaying the
// corresponding live call sequence.
package orchestrator
