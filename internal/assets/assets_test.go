package assets

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/sitepipe/sitepipe/internal/config"
	"github.com/sitepipe/sitepipe/internal/errors"
	"github.com/sitepipe/sitepipe/internal/task"
	"github.com/sitepipe/sitepipe/internal/testutil"
)

const (
	testSource = "/proj/source"
	testOutput = "/proj/build"
)

func newTestEnv(t *testing.T, files map[string]string) (*Env, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll(testSource, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for name, content := range files {
		if err := afero.WriteFile(fsys, testSource+"/"+name, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}

	env := NewEnv(config.Default(), "/proj", fsys, testutil.Toolchain(), nil)
	if err := env.Out.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	return env, fsys
}

func outputFiles(t *testing.T, fsys afero.Fs) []string {
	t.Helper()
	return testutil.ListTree(t, fsys, testOutput)
}

func run(t *testing.T, env *Env, build func(*Env) task.Task) ([]string, error) {
	t.Helper()
	res, err := build(env).Run(context.Background())
	return res.Outputs, err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestStyles_ValidEntry(t *testing.T) {
	env, fsys := newTestEnv(t, map[string]string{
		"less/style.less": "a { color: red; }",
	})

	outputs, err := run(t, env, Styles)
	if err != nil {
		t.Fatalf("styles error = %v", err)
	}

	want := []string{"css/style.css", "css/style.css.map"}
	if !slices.Equal(outputs, want) {
		t.Errorf("outputs = %v, want %v", outputs, want)
	}
	if got := outputFiles(t, fsys); !slices.Equal(got, want) {
		t.Errorf("output tree = %v, want %v", got, want)
	}

	css, _ := afero.ReadFile(fsys, testOutput+"/css/style.css")
	if !strings.Contains(string(css), "sourceMappingURL=style.css.map") {
		t.Errorf("stylesheet does not reference its map: %q", css)
	}
}

func TestStyles_Malformed(t *testing.T) {
	env, fsys := newTestEnv(t, map[string]string{
		"less/style.less": "a { color: red;",
	})

	_, err := run(t, env, Styles)
	var sfe *errors.SourceFormatError
	if !errors.As(err, &sfe) {
		t.Fatalf("styles error = %v, want SourceFormatError", err)
	}
	if sfe.Path != "less/style.less" {
		t.Errorf("Path = %q", sfe.Path)
	}
	if got := outputFiles(t, fsys); len(got) != 0 {
		t.Errorf("output tree = %v, want empty", got)
	}
}

func TestStyles_MissingEntry(t *testing.T) {
	env, _ := newTestEnv(t, nil)

	_, err := run(t, env, Styles)
	var mie *errors.MissingInputError
	if !errors.As(err, &mie) {
		t.Fatalf("styles error = %v, want MissingInputError", err)
	}
	if mie.Task != NameStyles {
		t.Errorf("Task = %q, want %q", mie.Task, NameStyles)
	}
}

func TestStyles_NoSourceMap(t *testing.T) {
	env, _ := newTestEnv(t, map[string]string{"less/style.less": "a{}"})
	env.Config.Styles.SourceMap = false

	outputs, err := run(t, env, Styles)
	if err != nil {
		t.Fatalf("styles error = %v", err)
	}
	if !slices.Equal(outputs, []string{"css/style.css"}) {
		t.Errorf("outputs = %v", outputs)
	}
}

func TestStyles_Minify(t *testing.T) {
	const source = "a {\n  color: red;\n}\n"

	tests := []struct {
		name         string
		minify       bool
		sourceMap    bool
		wantCompress bool
		want         string
	}{
		{"minifier without map", true, false, false, "a{color:red}"},
		{"compiler with map", true, true, true, "a{color:red;}\n/*# sourceMappingURL=style.css.map */"},
		{"off", false, false, false, "/* compiled */\n" + source},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, fsys := newTestEnv(t, map[string]string{"less/style.less": source})
			env.Config.Styles.Minify = tt.minify
			env.Config.Styles.SourceMap = tt.sourceMap

			if _, err := run(t, env, Styles); err != nil {
				t.Fatalf("styles error = %v", err)
			}
			fake := env.Tools.Styles.(*testutil.FakeStyles)
			if got := fake.LastOptions().Compress; got != tt.wantCompress {
				t.Errorf("Compress = %v, want %v", got, tt.wantCompress)
			}
			css, _ := afero.ReadFile(fsys, testOutput+"/css/style.css")
			if string(css) != tt.want {
				t.Errorf("css = %q, want %q", css, tt.want)
			}
		})
	}
}

func TestStylesheetName(t *testing.T) {
	tests := []struct{ dir, entry, want string }{
		{"css", "less/style.less", "css/style.css"},
		{"assets/css", "less/main.less", "assets/css/main.css"},
		{"", "style.less", "style.css"},
	}
	for _, tt := range tests {
		if got := StylesheetName(tt.dir, tt.entry); got != tt.want {
			t.Errorf("StylesheetName(%q, %q) = %q, want %q", tt.dir, tt.entry, got, tt.want)
		}
	}
}

func TestClean(t *testing.T) {
	env, fsys := newTestEnv(t, nil)
	_ = afero.WriteFile(fsys, testOutput+"/stale.txt", []byte("x"), 0o644)

	if _, err := run(t, env, Clean); err != nil {
		t.Fatalf("clean error = %v", err)
	}
	if got := outputFiles(t, fsys); len(got) != 0 {
		t.Errorf("output tree = %v, want empty", got)
	}
}

func TestCopy(t *testing.T) {
	files := map[string]string{
		"fonts/a.woff2":    "f1",
		"fonts/sub/b.woff": "f2",
		"fonts/c.ttf":      "skip",
		"index.html":       "<p>hi</p>",
	}

	t.Run("minify on", func(t *testing.T) {
		env, _ := newTestEnv(t, files)
		outputs, err := run(t, env, Copy)
		if err != nil {
			t.Fatalf("copy error = %v", err)
		}
		want := []string{"fonts/a.woff2", "fonts/sub/b.woff"}
		if !slices.Equal(outputs, want) {
			t.Errorf("outputs = %v, want %v", outputs, want)
		}
	})

	t.Run("minify off", func(t *testing.T) {
		env, _ := newTestEnv(t, files)
		env.Config.Markup.Minify = false
		outputs, err := run(t, env, Copy)
		if err != nil {
			t.Fatalf("copy error = %v", err)
		}
		if slices.Contains(outputs, "index.html") {
			t.Errorf("outputs = %v, markup belongs to the html task", outputs)
		}
	})
}

func TestHTML(t *testing.T) {
	env, fsys := newTestEnv(t, map[string]string{
		"index.html":     "<html>\n  <body>\n    <p>  hello  </p>\n  </body>\n</html>\n",
		"blog/post.html": "<p>nested</p>",
	})

	outputs, err := run(t, env, HTML)
	if err != nil {
		t.Fatalf("html error = %v", err)
	}
	if !slices.Equal(outputs, []string{"index.html"}) {
		t.Errorf("outputs = %v, want only top-level html", outputs)
	}
	data, _ := afero.ReadFile(fsys, testOutput+"/index.html")
	if strings.Contains(string(data), "\n  ") {
		t.Errorf("index.html not minified: %q", data)
	}
}

func TestHTML_MinifyOff(t *testing.T) {
	const page = "<html>\n  <body>\n    <p>  hello  </p>\n  </body>\n</html>\n"
	env, fsys := newTestEnv(t, map[string]string{"index.html": page})
	env.Config.Markup.Minify = false

	outputs, err := run(t, env, HTML)
	if err != nil {
		t.Fatalf("html error = %v", err)
	}
	if !slices.Equal(outputs, []string{"index.html"}) {
		t.Errorf("outputs = %v, want [index.html]", outputs)
	}
	data, _ := afero.ReadFile(fsys, testOutput+"/index.html")
	if string(data) != page {
		t.Errorf("index.html = %q, want it copied unchanged", data)
	}
}

func TestSVGAndSprite(t *testing.T) {
	icon := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 4 4"><rect width="4" height="4"/></svg>`
	env, fsys := newTestEnv(t, map[string]string{
		"img/arrow.svg":     icon,
		"img/close.svg":     icon,
		"img/logos/big.svg": icon,
	})

	outputs, err := run(t, env, SVG)
	if err != nil {
		t.Fatalf("svg error = %v", err)
	}
	want := []string{"img/arrow.svg", "img/close.svg", "img/logos/big.svg"}
	if !slices.Equal(outputs, want) {
		t.Errorf("svg outputs = %v, want %v", outputs, want)
	}

	outputs, err = run(t, env, Sprite)
	if err != nil {
		t.Fatalf("sprite error = %v", err)
	}
	if !slices.Equal(outputs, []string{SpriteName}) {
		t.Errorf("sprite outputs = %v", outputs)
	}
	sprite, _ := afero.ReadFile(fsys, testOutput+"/"+SpriteName)
	for _, id := range []string{`id="arrow"`, `id="close"`} {
		if !strings.Contains(string(sprite), id) {
			t.Errorf("sprite missing %s: %q", id, sprite)
		}
	}
	if strings.Contains(string(sprite), `id="big"`) {
		t.Error("sprite should only include top-level icons")
	}
}

func TestSVG_LeavesSpriteToSpriteTask(t *testing.T) {
	icon := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 4 4"><rect width="4" height="4"/></svg>`
	env, _ := newTestEnv(t, map[string]string{
		"img/icon.svg":   icon,
		"img/sprite.svg": icon,
	})

	svgOut, err := run(t, env, SVG)
	if err != nil {
		t.Fatalf("svg error = %v", err)
	}
	spriteOut, err := run(t, env, Sprite)
	if err != nil {
		t.Fatalf("sprite error = %v", err)
	}

	if !slices.Equal(svgOut, []string{"img/icon.svg"}) {
		t.Errorf("svg outputs = %v, want [img/icon.svg]", svgOut)
	}
	if !slices.Equal(spriteOut, []string{SpriteName}) {
		t.Errorf("sprite outputs = %v, want [%s]", spriteOut, SpriteName)
	}
	for _, p := range svgOut {
		if slices.Contains(spriteOut, p) {
			t.Errorf("%s written by both svg and sprite", p)
		}
	}
}

func TestSprite_NoIcons(t *testing.T) {
	env, fsys := newTestEnv(t, nil)

	outputs, err := run(t, env, Sprite)
	if err != nil {
		t.Fatalf("sprite error = %v", err)
	}
	if len(outputs) != 0 || len(outputFiles(t, fsys)) != 0 {
		t.Errorf("sprite wrote %v with no icons", outputs)
	}
}

func TestRasterTasks(t *testing.T) {
	img := string(pngBytes(t))
	env, fsys := newTestEnv(t, map[string]string{
		"img/a.png":      img,
		"img/deep/b.png": img,
		"img/c.gif":      "skip",
	})

	outputs, err := run(t, env, ImagesCopy)
	if err != nil {
		t.Fatalf("images:copy error = %v", err)
	}
	if !slices.Equal(outputs, []string{"img/a.png", "img/deep/b.png"}) {
		t.Errorf("images:copy outputs = %v", outputs)
	}
	copied, _ := afero.ReadFile(fsys, testOutput+"/img/a.png")
	if string(copied) != img {
		t.Error("images:copy modified the file")
	}

	outputs, err = run(t, env, ImagesOptimize)
	if err != nil {
		t.Fatalf("images:optimize error = %v", err)
	}
	if len(outputs) != 2 {
		t.Errorf("images:optimize outputs = %v", outputs)
	}

	outputs, err = run(t, env, WebP)
	if err != nil {
		t.Fatalf("webp error = %v", err)
	}
	if !slices.Equal(outputs, []string{"img/a.webp", "img/deep/b.webp"}) {
		t.Errorf("webp outputs = %v", outputs)
	}
	webp, _ := afero.ReadFile(fsys, testOutput+"/img/a.webp")
	if !bytes.HasPrefix(webp, []byte("WEBP")) {
		t.Error("webp output not produced by encoder")
	}
}

func TestEmptySourceTree(t *testing.T) {
	env, fsys := newTestEnv(t, nil)

	for _, build := range []func(*Env) task.Task{
		Copy, HTML, SVG, Sprite, ImagesCopy, ImagesOptimize, WebP,
	} {
		outputs, err := run(t, env, build)
		if err != nil {
			t.Errorf("task on empty tree error = %v", err)
		}
		if len(outputs) != 0 {
			t.Errorf("task on empty tree wrote %v", outputs)
		}
	}
	if got := outputFiles(t, fsys); len(got) != 0 {
		t.Errorf("output tree = %v, want empty", got)
	}
}
