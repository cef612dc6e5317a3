package fsutil

import (
	"slices"
	"testing"

	"github.com/spf13/afero"

	"github.com/sitepipe/sitepipe/internal/errors"
)

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.html", "index.html", true},
		{"*.html", "blog/index.html", false},
		{"less/**/*.less", "less/style.less", true},
		{"less/**/*.less", "less/parts/nav.less", true},
		{"less/**/*.less", "less/parts/deep/nav.less", true},
		{"less/**/*.less", "css/style.less", false},
		{"img/**/*.{png,jpg}", "img/a.png", true},
		{"img/**/*.{png,jpg}", "img/photos/b.jpg", true},
		{"img/**/*.{png,jpg}", "img/c.gif", false},
		{"img/*.svg", "img/icon.svg", true},
		{"img/*.svg", "img/sub/icon.svg", false},
		{"fonts/**/*.{woff2,woff}", "fonts/x/y.woff2", true},
		{"./*.html", "./about.html", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			m, err := Compile(tt.pattern)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.pattern, err)
			}
			if got := m.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestGlob(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for _, name := range []string{
		"/src/index.html",
		"/src/about.html",
		"/src/blog/post.html",
		"/src/img/b.png",
		"/src/img/a.jpg",
		"/src/img/deep/c.png",
		"/src/img/icon.svg",
	} {
		if err := afero.WriteFile(fsys, name, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}

	got, err := Glob(fsys, "/src", "img/**/*.{png,jpg}")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	want := []string{"img/a.jpg", "img/b.png", "img/deep/c.png"}
	if !slices.Equal(got, want) {
		t.Errorf("Glob() = %v, want %v", got, want)
	}

	got, err = Glob(fsys, "/src", "*.html")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	want = []string{"about.html", "index.html"}
	if !slices.Equal(got, want) {
		t.Errorf("Glob(*.html) = %v, want %v", got, want)
	}
}

func TestGlob_MissingRoot(t *testing.T) {
	got, err := Glob(afero.NewMemMapFs(), "/nowhere", "*.html")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Glob() = %v, want no matches", got)
	}
}

func TestGlobRequired(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = fsys.MkdirAll("/src", 0o755)

	_, err := GlobRequired(fsys, "/src", "less/style.less")
	if !errors.Is(err, errors.ErrMissingInput) {
		t.Fatalf("GlobRequired() error = %v, want ErrMissingInput", err)
	}

	_ = afero.WriteFile(fsys, "/src/less/style.less", []byte("a{}"), 0o644)
	got, err := GlobRequired(fsys, "/src", "less/style.less")
	if err != nil {
		t.Fatalf("GlobRequired() error = %v", err)
	}
	if !slices.Equal(got, []string{"less/style.less"}) {
		t.Errorf("GlobRequired() = %v", got)
	}
}
