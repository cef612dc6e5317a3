package assets

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/sitepipe/sitepipe/internal/convert"
	"github.com/sitepipe/sitepipe/internal/errors"
	"github.com/sitepipe/sitepipe/internal/fsutil"
	"github.com/sitepipe/sitepipe/internal/task"
)

// Styles compiles the stylesheet entry point into <output_dir>/<name>.css
// and, when enabled, <name>.css.map next to it. The entry is mandatory.
// Nothing is written unless compilation succeeds.
//
// With styles.minify on, a build with a source map has the compiler
// compress its own output so the map keeps pointing at the right columns.
// Without a map the compiled CSS goes through the CSS minifier.
func Styles(env *Env) task.Task {
	return task.New(NameStyles, task.KindCSS, func(ctx context.Context) (task.Result, error) {
		cfg := env.Config.Styles
		entry := strings.TrimPrefix(path.Clean(filepath.ToSlash(cfg.Entry)), "./")

		if _, err := fsutil.GlobRequired(env.Fs, env.Source, entry); err != nil {
			var mie *errors.MissingInputError
			if errors.As(err, &mie) {
				mie.WithTask(NameStyles)
			}
			return task.Result{}, err
		}
		content, err := env.read(entry)
		if err != nil {
			return task.Result{}, err
		}

		cssName := StylesheetName(cfg.OutputDir, entry)
		mapName := cssName + ".map"

		sheet, err := env.Tools.Styles.Compile(ctx, convert.StyleSource{
			Name:    entry,
			Dir:     filepath.Dir(env.sourcePath(entry)),
			Content: content,
		}, convert.StyleOptions{
			SourceMap: cfg.SourceMap,
			MapURL:    path.Base(mapName),
			Compress:  cfg.Minify && cfg.SourceMap,
		})
		if err != nil {
			return task.Result{}, err
		}
		if cfg.Minify && !cfg.SourceMap {
			if sheet.CSS, err = env.Tools.Minify.CSS(cssName, sheet.CSS); err != nil {
				return task.Result{}, err
			}
		}

		files := map[string][]byte{cssName: sheet.CSS}
		if cfg.SourceMap && sheet.Map != nil {
			files[mapName] = sheet.Map
		}
		written, err := env.Out.WriteAll(files)
		if err != nil {
			return task.Result{}, err
		}
		return task.Result{Outputs: written}, nil
	})
}

// StylesheetName maps the entry path to its output path, e.g.
// less/style.less under "css" becomes css/style.css.
func StylesheetName(outputDir, entry string) string {
	base := path.Base(entry)
	return path.Join(filepath.ToSlash(outputDir), strings.TrimSuffix(base, path.Ext(base))+".css")
}
