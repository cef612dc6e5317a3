package task

import (
	"context"
	"fmt"
	"slices"
)

// Kind classifies what a task produces. It is only used to route reload
// signals after a watch-triggered rebuild.
type Kind string

const (
	KindNone   Kind = ""
	KindCSS    Kind = "css"
	KindHTML   Kind = "html"
	KindImage  Kind = "image"
	KindVector Kind = "vector"
)

// String returns the kind name, or "none".
func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	return string(k)
}

// Result is the success value of a task invocation.
type Result struct {
	// Outputs lists the files written, relative to the output root,
	// using forward slashes.
	Outputs []string
}

// Merge returns a Result containing the outputs of r followed by o.
func (r Result) Merge(o Result) Result {
	if len(o.Outputs) == 0 {
		return r
	}
	out := make([]string, 0, len(r.Outputs)+len(o.Outputs))
	out = append(out, r.Outputs...)
	out = append(out, o.Outputs...)
	return Result{Outputs: out}
}

// Sorted returns the outputs sorted and de-duplicated.
func (r Result) Sorted() []string {
	out := slices.Clone(r.Outputs)
	slices.Sort(out)
	return slices.Compact(out)
}

// Task is a named unit of build work.
type Task interface {
	// Name identifies the task within a registry.
	Name() string

	// Kind classifies the task's output for reload routing.
	Kind() Kind

	// Run performs the work and blocks until it completes or fails.
	Run(ctx context.Context) (Result, error)
}

// RunFunc is the body of a leaf task.
type RunFunc func(ctx context.Context) (Result, error)

type funcTask struct {
	name string
	kind Kind
	fn   RunFunc
}

// New creates a leaf task from a function.
func New(name string, kind Kind, fn RunFunc) Task {
	return &funcTask{name: name, kind: kind, fn: fn}
}

func (t *funcTask) Name() string { return t.name }
func (t *funcTask) Kind() Kind   { return t.kind }

func (t *funcTask) Run(ctx context.Context) (Result, error) {
	return t.fn(ctx)
}

// Noop returns a leaf task that succeeds without doing anything.
func Noop(name string) Task {
	return New(name, KindNone, func(context.Context) (Result, error) {
		return Result{}, nil
	})
}

// runChild invokes t, turning a panic into an error so that a misbehaving
// converter cannot take down a parallel stage or the watch loop.
func runChild(ctx context.Context, t Task) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %q panicked: %v", t.Name(), r)
		}
	}()
	return t.Run(ctx)
}
