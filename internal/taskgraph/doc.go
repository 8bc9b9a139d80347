// Package taskgraph builds and analyzes dependency graphs over declared
// work items.
//
// # Overview
//
// A workflow definition is an ordered list of phases, each holding an
// ordered list of tasks. Tasks may depend on other tasks, including tasks
// in other phases. The package derives a Graph from those definitions and
// computes structural properties used for scheduling:
//
//   - per-node depth (longest dependency chain below the node)
//   - the critical path (the dependency chain with maximal total duration)
//   - a topological execution order
//   - a leveled execution plan grouping tasks that can run in parallel
//
// # Malformed input
//
// Definitions frequently originate from LLM-authored plans, so the package
// never rejects a malformed graph. Cycles and dangling dependency ids are
// detected, logged, and handled with deterministic fallbacks: cyclic nodes
// get depth 0, topological sort returns a partial order, and nodes the
// planner cannot reach are left out of the plan. Callers that need strict
// input validation should do it before building (see package definitions).
//
// The Graph is built once and never structurally mutated. Runtime state
// lives in package orchestrator; the Status field on each node is only an
// advisory display cache written by the orchestrator.
package taskgraph
