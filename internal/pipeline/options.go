package pipeline

import (
	"context"
	"time"

	"github.com/sitepipe/sitepipe/internal/assets"
	"github.com/sitepipe/sitepipe/internal/watch"
)

// Server is the part of the dev server the serve and watch tasks use.
type Server interface {
	watch.Reloader
	Start(ctx context.Context) error
}

// Config wires the pipelines to their collaborators.
type Config struct {
	// Env is shared by every leaf task.
	Env *assets.Env
	// Server backs the serve task and receives watch post-actions. When nil
	// the serve task fails and watch runs without post-actions.
	Server Server
	// Debounce is the watch quiescence window.
	Debounce time.Duration
}
