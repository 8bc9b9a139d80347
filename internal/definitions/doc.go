// Package definitions loads and validates workflow definition files.
//
// Definitions are YAML documents listing phases and tasks, typically
// authored by an AI planning step, so the loader is the strict boundary
// the rest of the system relies on: it normalizes loosely-typed input into
// strict records before anything reaches the graph algorithms. Missing
// descriptions and non-positive durations are normalized with a warning;
// structural problems (no phases, missing ids) are errors. Dangling
// dependency references and duplicate ids are logged but tolerated, the
// graph layer has its own guards for them.
//
// The Watcher reloads a definition file when it changes on disk, letting
// the daemon swap in a new graph without restarting.
package definitions
