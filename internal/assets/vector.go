package assets

import (
	"context"
	"slices"

	"github.com/sitepipe/sitepipe/internal/convert"
	"github.com/sitepipe/sitepipe/internal/fsutil"
	"github.com/sitepipe/sitepipe/internal/task"
)

// SVG optimizes every vector file under img/, keeping relative paths. A
// source file at the sprite's path is left to the sprite task, which owns
// that output.
func SVG(env *Env) task.Task {
	return task.New(NameSVG, task.KindVector, func(ctx context.Context) (task.Result, error) {
		matches, err := fsutil.Glob(env.Fs, env.Source, GlobVectors)
		if err != nil {
			return task.Result{}, err
		}
		matches = slices.DeleteFunc(matches, isSprite)
		written, err := env.convertAll(ctx, matches, func(_ context.Context, rel string, data []byte) (string, []byte, error) {
			out, err := env.Tools.Minify.SVG(rel, data)
			return rel, out, err
		})
		return task.Result{Outputs: written}, err
	})
}

// Sprite optimizes the top-level icons in img/ and stacks them into
// img/sprite.svg, one <symbol> per icon named after its file. No icons
// means no sprite.
func Sprite(env *Env) task.Task {
	return task.New(NameSprite, task.KindVector, func(context.Context) (task.Result, error) {
		matches, err := fsutil.Glob(env.Fs, env.Source, GlobIcons)
		if err != nil {
			return task.Result{}, err
		}
		// A sprite left in the source tree is not an icon.
		matches = slices.DeleteFunc(matches, isSprite)
		if len(matches) == 0 {
			return task.Result{}, nil
		}

		icons := make([]convert.Icon, 0, len(matches))
		for _, rel := range matches {
			data, err := env.read(rel)
			if err != nil {
				return task.Result{}, err
			}
			optimized, err := env.Tools.Minify.SVG(rel, data)
			if err != nil {
				return task.Result{}, err
			}
			icons = append(icons, convert.Icon{Name: rel, Data: optimized})
		}

		sprite, err := convert.AssembleSprite(icons)
		if err != nil {
			return task.Result{}, err
		}
		if err := env.Out.WriteFile(SpriteName, sprite); err != nil {
			return task.Result{}, err
		}
		return task.Result{Outputs: []string{SpriteName}}, nil
	})
}

func isSprite(rel string) bool { return rel == SpriteName }
