// Package orchestrator dispatches work to capability providers and merges
// their results.
//
// The [Controller] is the entry point used by the CLI, the watcher and the
// TUI. It provides:
//   - Query fan-out: one task per query source, merged into a QueryReport in
//     the order the sources were given, regardless of completion order
//   - Index fan-out: every enabled indexer that handles a URI gets the streams
//     resolved by the URI's storage provider; results are merged in
//     registry order
//   - Named indexing and synchronous unindexing
//
// Build* methods return tasks that have not been submitted, so callers may
// Run them inline or hand them to a pool. Dispatch* methods submit them.
//
// Task bodies are plain functions over explicit job values (queryJob,
// fanOutJob, indexAllJob) so their inputs are visible and testable.
//
// Example usage:
//
//	reg := registry.New(groups...)
//	mgr := task.NewManager(4)
//	ctrl := orchestrator.New(orchestrator.RequiredConfig{Registry: reg, Tasks: mgr})
//	report, err := ctrl.DispatchQueryMany([]string{"fts", "memory"}, "hello", models.QueryParams{}).Get()
package orchestrator
