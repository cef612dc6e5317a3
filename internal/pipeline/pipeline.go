package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitepipe/sitepipe/internal/assets"
	"github.com/sitepipe/sitepipe/internal/registry"
	"github.com/sitepipe/sitepipe/internal/task"
	"github.com/sitepipe/sitepipe/internal/watch"
)

// ErrNoServer is returned by the serve task when no server was configured.
var ErrNoServer = errors.New("pipeline: no dev server configured")

// Register adds every leaf task, the session tasks and both pipelines to
// reg, and returns the pipelines with the dev watch bindings.
func Register(reg *registry.Registry, cfg Config) (*Set, error) {
	if reg == nil {
		return nil, errors.New("pipeline: registry is required")
	}
	if cfg.Env == nil {
		return nil, errors.New("pipeline: Env is required")
	}
	env := cfg.Env

	r := &registrar{reg: reg}
	clean := r.add(assets.Clean(env))
	cp := r.add(assets.Copy(env))
	styles := r.add(assets.Styles(env))
	html := r.add(assets.HTML(env))
	svg := r.add(assets.SVG(env))
	sprite := r.add(assets.Sprite(env))
	imagesCopy := r.add(assets.ImagesCopy(env))
	imagesOptimize := r.add(assets.ImagesOptimize(env))
	webp := r.add(assets.WebP(env))

	bindings := []watch.Binding{
		{Glob: assets.GlobStyles, Task: styles, Action: watch.ActionInject},
		{Glob: assets.GlobHTML, Task: html, Action: watch.ActionReload},
		{Glob: assets.GlobRaster, Task: task.Parallel("watch:images", imagesCopy, webp), Action: watch.ActionReload},
		{Glob: assets.GlobVectors, Task: task.Parallel("watch:vectors", svg, sprite), Action: watch.ActionReload},
	}

	serve := r.add(serveTask(cfg.Server))
	watcher := r.add(watchTask(reg, cfg, bindings))

	dev := r.add(task.Series(Dev,
		clean,
		cp,
		imagesCopy,
		task.Parallel(Dev+":assets", styles, html, svg, sprite, webp),
		serve,
		watcher,
	))
	build := r.add(task.Series(Build,
		clean,
		cp,
		task.Parallel(Build+":assets", styles, html, svg, sprite, imagesOptimize, webp),
	))

	if r.err != nil {
		return nil, r.err
	}
	return &Set{Dev: dev, Build: build, Bindings: bindings}, nil
}

// registrar registers tasks and keeps the first error.
type registrar struct {
	reg *registry.Registry
	err error
}

func (r *registrar) add(t task.Task) task.Task {
	if r.err != nil {
		return t
	}
	wrapped, err := r.reg.Register(t)
	if err != nil {
		r.err = fmt.Errorf("pipeline: %w", err)
		return t
	}
	return wrapped
}

// serveTask starts the dev server and returns once it is listening. The
// server stops when the pipeline's context is done.
func serveTask(srv Server) task.Task {
	return task.New(NameServe, task.KindNone, func(ctx context.Context) (task.Result, error) {
		if srv == nil {
			return task.Result{}, ErrNoServer
		}
		return task.Result{}, srv.Start(ctx)
	})
}

// watchTask runs the watcher until ctx is done. Cancellation is the normal
// way for it to end and is not an error.
func watchTask(reg *registry.Registry, cfg Config, bindings []watch.Binding) task.Task {
	return task.New(NameWatch, task.KindNone, func(ctx context.Context) (task.Result, error) {
		var reloader watch.Reloader
		if cfg.Server != nil {
			reloader = cfg.Server
		}
		w, err := watch.New(cfg.Env.Source, bindings, watch.Options{
			Debounce: cfg.Debounce,
			Reloader: reloader,
			Output:   cfg.Env.Out,
			Bus:      reg.Bus(),
			Logger:   cfg.Env.Logger,
		})
		if err != nil {
			return task.Result{}, err
		}
		if err := w.Start(ctx); err != nil {
			return task.Result{}, err
		}

		<-ctx.Done()
		return task.Result{}, w.Close()
	})
}
