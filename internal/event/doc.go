// Package event provides a pub-sub event bus that decouples task execution
// from the components that report on it.
//
// Tasks registered in the pipeline registry publish lifecycle events; the
// console renders them, the watcher publishes trigger and reload events, and
// tests subscribe to observe ordering without instrumenting tasks directly.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement
//   - [Bus]: Synchronous pub-sub dispatcher, safe for concurrent use
//   - [Handler]: Function type for event handlers
//
// # Event Types
//
//   - task.started, task.finished
//   - pipeline.finished
//   - watch.triggered, watch.error
//   - reload.sent
//   - server.listening
//
// Handlers run synchronously on the publishing goroutine. Tasks in a
// parallel stage publish concurrently, so handlers must be safe for
// concurrent use.
package event
