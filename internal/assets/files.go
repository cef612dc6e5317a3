package assets

import (
	"context"

	"github.com/sitepipe/sitepipe/internal/task"
)

// Clean deletes the output tree and recreates it empty.
func Clean(env *Env) task.Task {
	return task.New(NameClean, task.KindNone, func(context.Context) (task.Result, error) {
		if err := env.Out.Clean(); err != nil {
			return task.Result{}, err
		}
		env.Logger.Debug("output tree cleaned", "root", env.Out.Root())
		return task.Result{}, nil
	})
}

// Copy copies fonts verbatim.
func Copy(env *Env) task.Task {
	return task.New(NameCopy, task.KindNone, func(ctx context.Context) (task.Result, error) {
		written, err := env.eachFile(ctx, GlobFonts, identity)
		return task.Result{Outputs: written}, err
	})
}
