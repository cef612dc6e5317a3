package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier, "category.action".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeTaskStarted      = "task.started"
	TypeTaskFinished     = "task.finished"
	TypePipelineFinished = "pipeline.finished"
	TypeWatchTriggered   = "watch.triggered"
	TypeWatchError       = "watch.error"
	TypeReloadSent       = "reload.sent"
	TypeServerListening  = "server.listening"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Task Events
// -----------------------------------------------------------------------------

// TaskStartedEvent is emitted when a registered task begins an invocation.
type TaskStartedEvent struct {
	baseEvent
	Task      string
	Kind      string
	Composite bool
}

// NewTaskStartedEvent creates a TaskStartedEvent.
func NewTaskStartedEvent(task, kind string, composite bool) TaskStartedEvent {
	return TaskStartedEvent{
		baseEvent: newBaseEvent(TypeTaskStarted),
		Task:      task,
		Kind:      kind,
		Composite: composite,
	}
}

// TaskFinishedEvent is emitted when a registered task completes or fails.
type TaskFinishedEvent struct {
	baseEvent
	Task      string
	Kind      string
	Composite bool
	Duration  time.Duration
	Outputs   []string
	Err       error
}

// NewTaskFinishedEvent creates a TaskFinishedEvent.
func NewTaskFinishedEvent(task, kind string, composite bool, d time.Duration, outputs []string, err error) TaskFinishedEvent {
	return TaskFinishedEvent{
		baseEvent: newBaseEvent(TypeTaskFinished),
		Task:      task,
		Kind:      kind,
		Composite: composite,
		Duration:  d,
		Outputs:   outputs,
		Err:       err,
	}
}

// Succeeded reports whether the task finished without error.
func (e TaskFinishedEvent) Succeeded() bool { return e.Err == nil }

// PipelineFinishedEvent is emitted when a top-level pipeline invocation ends.
type PipelineFinishedEvent struct {
	baseEvent
	Pipeline string
	Duration time.Duration
	Err      error
}

// NewPipelineFinishedEvent creates a PipelineFinishedEvent.
func NewPipelineFinishedEvent(pipeline string, d time.Duration, err error) PipelineFinishedEvent {
	return PipelineFinishedEvent{
		baseEvent: newBaseEvent(TypePipelineFinished),
		Pipeline:  pipeline,
		Duration:  d,
		Err:       err,
	}
}

// -----------------------------------------------------------------------------
// Watch Events
// -----------------------------------------------------------------------------

// WatchTriggeredEvent is emitted when a binding leaves the debounce window
// and invokes its task.
type WatchTriggeredEvent struct {
	baseEvent
	Glob  string
	Task  string
	Paths []string
}

// NewWatchTriggeredEvent creates a WatchTriggeredEvent.
func NewWatchTriggeredEvent(glob, task string, paths []string) WatchTriggeredEvent {
	return WatchTriggeredEvent{
		baseEvent: newBaseEvent(TypeWatchTriggered),
		Glob:      glob,
		Task:      task,
		Paths:     paths,
	}
}

// WatchErrorEvent is emitted when a watcher-triggered invocation fails. The
// session keeps running.
type WatchErrorEvent struct {
	baseEvent
	Glob string
	Task string
	Err  error
}

// NewWatchErrorEvent creates a WatchErrorEvent.
func NewWatchErrorEvent(glob, task string, err error) WatchErrorEvent {
	return WatchErrorEvent{
		baseEvent: newBaseEvent(TypeWatchError),
		Glob:      glob,
		Task:      task,
		Err:       err,
	}
}

// -----------------------------------------------------------------------------
// Reload / Server Events
// -----------------------------------------------------------------------------

// ReloadSentEvent is emitted after a post-action notified connected clients.
type ReloadSentEvent struct {
	baseEvent
	Action  string // "reload" or "inject"
	Assets  []string
	Clients int
}

// NewReloadSentEvent creates a ReloadSentEvent.
func NewReloadSentEvent(action string, assets []string, clients int) ReloadSentEvent {
	return ReloadSentEvent{
		baseEvent: newBaseEvent(TypeReloadSent),
		Action:    action,
		Assets:    assets,
		Clients:   clients,
	}
}

// ServerListeningEvent is emitted once the dev server accepts connections.
type ServerListeningEvent struct {
	baseEvent
	URL string
}

// NewServerListeningEvent creates a ServerListeningEvent.
func NewServerListeningEvent(url string) ServerListeningEvent {
	return ServerListeningEvent{
		baseEvent: newBaseEvent(TypeServerListening),
		URL:       url,
	}
}
