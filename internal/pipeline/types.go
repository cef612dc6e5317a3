package pipeline

import (
	"github.com/sitepipe/sitepipe/internal/task"
	"github.com/sitepipe/sitepipe/internal/watch"
)

// Pipeline names.
const (
	Dev   = "default"
	Build = "build"
)

// Session task names.
const (
	NameServe = "serve"
	NameWatch = "watch"
)

// Set is what Register produced.
type Set struct {
	// Dev and Build are the registered top-level pipelines.
	Dev   task.Task
	Build task.Task
	// Bindings are the dev watch bindings, in match order.
	Bindings []watch.Binding
}
