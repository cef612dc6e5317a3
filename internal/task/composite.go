package task

import (
	"context"

	"github.com/sourcegraph/conc"

	"github.com/sitepipe/sitepipe/internal/errors"
)

// Mode selects how a Composite runs its children.
type Mode int

const (
	// ModeSeries runs children one after another.
	ModeSeries Mode = iota
	// ModeParallel runs children concurrently and joins.
	ModeParallel
)

// String returns "series" or "parallel".
func (m Mode) String() string {
	if m == ModeParallel {
		return "parallel"
	}
	return "series"
}

// Composite is a task built from child tasks.
type Composite struct {
	name     string
	mode     Mode
	children []Task
}

// Series returns a composite that runs children in order, stopping at the
// first failure.
func Series(name string, children ...Task) *Composite {
	return &Composite{name: name, mode: ModeSeries, children: children}
}

// Parallel returns a composite that runs all children concurrently and
// completes once every child has completed.
func Parallel(name string, children ...Task) *Composite {
	return &Composite{name: name, mode: ModeParallel, children: children}
}

// Name returns the composite's name.
func (c *Composite) Name() string { return c.name }

// Mode returns the composition mode.
func (c *Composite) Mode() Mode { return c.mode }

// Children returns the child tasks in registration order.
func (c *Composite) Children() []Task {
	out := make([]Task, len(c.children))
	copy(out, c.children)
	return out
}

// Kind returns the children's kind when they all agree, otherwise KindNone.
func (c *Composite) Kind() Kind {
	if len(c.children) == 0 {
		return KindNone
	}
	k := c.children[0].Kind()
	for _, child := range c.children[1:] {
		if child.Kind() != k {
			return KindNone
		}
	}
	return k
}

// Run executes the composite according to its mode.
func (c *Composite) Run(ctx context.Context) (Result, error) {
	if c.mode == ModeParallel {
		return c.runParallel(ctx)
	}
	return c.runSeries(ctx)
}

func (c *Composite) runSeries(ctx context.Context) (Result, error) {
	var total Result
	for _, child := range c.children {
		// Cancellation is only observed between children; a running child
		// is allowed to finish.
		if err := ctx.Err(); err != nil {
			return total, err
		}
		res, err := runChild(ctx, child)
		total = total.Merge(res)
		if err != nil {
			return total, errors.NewTaskError(child.Name(), err)
		}
	}
	return total, nil
}

func (c *Composite) runParallel(ctx context.Context) (Result, error) {
	results := make([]Result, len(c.children))
	errs := make([]error, len(c.children))

	var wg conc.WaitGroup
	for i, child := range c.children {
		wg.Go(func() {
			results[i], errs[i] = runChild(ctx, child)
		})
	}
	wg.Wait()

	var total Result
	var failed []error
	for i, child := range c.children {
		total = total.Merge(results[i])
		if errs[i] != nil {
			failed = append(failed, errors.NewTaskError(child.Name(), errs[i]))
		}
	}
	if len(failed) > 0 {
		return total, &errors.AggregateError{Name: c.name, Errs: failed}
	}
	return total, nil
}

// Walk visits t and, for composites, every descendant depth-first in
// registration order. depth is 0 for t itself.
func Walk(t Task, fn func(t Task, depth int)) {
	walk(t, 0, fn)
}

func walk(t Task, depth int, fn func(Task, int)) {
	fn(t, depth)
	if c, ok := Unwrap(t).(*Composite); ok {
		for _, child := range c.children {
			walk(child, depth+1, fn)
		}
	}
}

// Wrapper is implemented by decorators that add behavior around a Task.
type Wrapper interface {
	Unwrap() Task
}

// Unwrap strips decorators until it reaches the innermost Task.
func Unwrap(t Task) Task {
	for {
		w, ok := t.(Wrapper)
		if !ok {
			return t
		}
		t = w.Unwrap()
	}
}
