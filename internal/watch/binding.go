package watch

import (
	"github.com/sitepipe/sitepipe/internal/task"
)

// Action is what happens after a binding's task succeeds.
type Action int

const (
	// ActionNone does nothing.
	ActionNone Action = iota
	// ActionReload asks every connected client to reload the page.
	ActionReload
	// ActionInject pushes the rebuilt stylesheets to clients in place.
	ActionInject
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionReload:
		return "reload"
	case ActionInject:
		return "inject"
	default:
		return "none"
	}
}

// Binding associates a source glob with the task that rebuilds it.
type Binding struct {
	// Glob is matched against paths relative to the watched root.
	Glob string
	// Task is run once per coalesced burst of matching changes.
	Task task.Task
	// Action is performed after Task succeeds.
	Action Action
}

// Reloader is the client notification channel of the dev server.
type Reloader interface {
	ReloadAll()
	InjectAsset(path string, content []byte)
}
