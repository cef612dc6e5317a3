// Package registry holds the name -> task mapping for a sitepipe process.
//
// A Registry is built once at startup and passed explicitly to the CLI
// commands and the watcher. Registering a task wraps it so that every
// invocation, including invocations as a child of a composite, publishes
// task.started / task.finished events and is logged.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sitepipe/sitepipe/internal/errors"
	"github.com/sitepipe/sitepipe/internal/event"
	"github.com/sitepipe/sitepipe/internal/logging"
	"github.com/sitepipe/sitepipe/internal/task"
)

// Option configures a Registry.
type Option func(*Registry)

// WithBus sets the event bus that receives task lifecycle events.
func WithBus(bus *event.Bus) Option {
	return func(r *Registry) {
		r.bus = bus
	}
}

// WithLogger sets the logger used for task lifecycle logging.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry maps task names to tasks.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]task.Task
	order  []string
	bus    *event.Bus
	logger *logging.Logger
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		tasks: make(map[string]task.Task),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NopLogger()
	}
	return r
}

// Register adds t under its name and returns the instrumented task, which
// callers should use when composing.
func (r *Registry) Register(t task.Task) (task.Task, error) {
	if t == nil || t.Name() == "" {
		return nil, fmt.Errorf("registry: task must have a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[t.Name()]; exists {
		return nil, fmt.Errorf("registry: %q: %w", t.Name(), errors.ErrDuplicateTask)
	}

	wrapped := &observed{
		inner:  t,
		bus:    r.bus,
		logger: r.logger.WithTask(t.Name()),
	}
	r.tasks[t.Name()] = wrapped
	r.order = append(r.order, t.Name())
	return wrapped, nil
}

// Lookup returns the task registered under name.
func (r *Registry) Lookup(name string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[name]
	if !ok {
		return nil, fmt.Errorf("registry: %q: %w", name, errors.ErrTaskNotFound)
	}
	return t, nil
}

// MustLookup is Lookup for names wired at startup; it panics if name is
// unknown.
func (r *Registry) MustLookup(name string) task.Task {
	t, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns task names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Bus returns the registry's event bus, which may be nil.
func (r *Registry) Bus() *event.Bus {
	return r.bus
}

// observed decorates a registered task with events and logging.
type observed struct {
	inner  task.Task
	bus    *event.Bus
	logger *logging.Logger
}

func (o *observed) Name() string      { return o.inner.Name() }
func (o *observed) Kind() task.Kind   { return o.inner.Kind() }
func (o *observed) Unwrap() task.Task { return o.inner }

func (o *observed) composite() bool {
	_, ok := o.inner.(*task.Composite)
	return ok
}

func (o *observed) Run(ctx context.Context) (task.Result, error) {
	composite := o.composite()
	kind := o.inner.Kind().String()

	o.bus.Publish(event.NewTaskStartedEvent(o.Name(), kind, composite))
	o.logger.Debug("task started", "kind", kind)

	start := time.Now()
	res, err := o.inner.Run(ctx)
	elapsed := time.Since(start)

	o.bus.Publish(event.NewTaskFinishedEvent(o.Name(), kind, composite, elapsed, res.Outputs, err))
	if err != nil {
		o.logger.Debug("task failed", "duration_ms", elapsed.Milliseconds(), "error", err.Error())
	} else {
		o.logger.Debug("task finished", "duration_ms", elapsed.Milliseconds(), "outputs", len(res.Outputs))
	}
	return res, err
}
