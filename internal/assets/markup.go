package assets

import (
	"context"

	"github.com/sitepipe/sitepipe/internal/task"
)

// HTML writes top-level markup files into the output root, minified unless
// markup.minify is off, in which case they are copied unchanged.
func HTML(env *Env) task.Task {
	return task.New(NameHTML, task.KindHTML, func(ctx context.Context) (task.Result, error) {
		fn := identity
		if env.Config.Markup.Minify {
			fn = func(_ context.Context, rel string, data []byte) (string, []byte, error) {
				out, err := env.Tools.Minify.HTML(rel, data)
				return rel, out, err
			}
		}
		written, err := env.eachFile(ctx, GlobHTML, fn)
		return task.Result{Outputs: written}, err
	})
}
