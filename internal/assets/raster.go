package assets

import (
	"context"

	"github.com/sitepipe/sitepipe/internal/convert"
	"github.com/sitepipe/sitepipe/internal/task"
)

// ImagesCopy copies raster images unmodified. Used by the dev pipeline.
func ImagesCopy(env *Env) task.Task {
	return task.New(NameImagesCopy, task.KindImage, func(ctx context.Context) (task.Result, error) {
		written, err := env.eachFile(ctx, GlobRaster, identity)
		return task.Result{Outputs: written}, err
	})
}

// ImagesOptimize re-encodes raster images. Used by the build pipeline.
func ImagesOptimize(env *Env) task.Task {
	return task.New(NameImagesOptimize, task.KindImage, func(ctx context.Context) (task.Result, error) {
		written, err := env.eachFile(ctx, GlobRaster, func(_ context.Context, rel string, data []byte) (string, []byte, error) {
			out, err := env.Tools.Raster.Optimize(rel, data)
			return rel, out, err
		})
		return task.Result{Outputs: written}, err
	})
}

// WebP writes a .webp sibling for every raster image.
func WebP(env *Env) task.Task {
	return task.New(NameWebP, task.KindImage, func(ctx context.Context) (task.Result, error) {
		written, err := env.eachFile(ctx, GlobRaster, func(ctx context.Context, rel string, data []byte) (string, []byte, error) {
			out, err := env.Tools.WebP.Encode(ctx, rel, data)
			return convert.WebPName(rel), out, err
		})
		return task.Result{Outputs: written}, err
	})
}
