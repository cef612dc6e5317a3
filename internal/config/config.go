package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProjectFileName is the project-local config file looked up in the
// working directory.
const ProjectFileName = "sitepipe.yaml"

// Config represents the complete sitepipe configuration
type Config struct {
	Paths      PathsConfig      `mapstructure:"paths" yaml:"paths"`
	Styles     StylesConfig     `mapstructure:"styles" yaml:"styles"`
	Markup     MarkupConfig     `mapstructure:"markup" yaml:"markup"`
	Images     ImagesConfig     `mapstructure:"images" yaml:"images"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Watch      WatchConfig      `mapstructure:"watch" yaml:"watch"`
	Converters ConvertersConfig `mapstructure:"converters" yaml:"converters"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Console    ConsoleConfig    `mapstructure:"console" yaml:"console"`
}

// PathsConfig controls where sources are read and outputs written
type PathsConfig struct {
	// Root is the project directory. Empty means the working directory.
	Root string `mapstructure:"root" yaml:"root"`
	// Source is the source tree, relative to Root unless absolute (default: "source")
	Source string `mapstructure:"source" yaml:"source"`
	// Output is the output tree, relative to Root unless absolute (default: "build").
	// It is deleted and recreated by every full build.
	Output string `mapstructure:"output" yaml:"output"`
}

// StylesConfig controls stylesheet compilation
type StylesConfig struct {
	// Entry is the stylesheet entry file relative to the source tree (default: "less/style.less")
	Entry string `mapstructure:"entry" yaml:"entry"`
	// OutputDir is the output subdirectory for compiled CSS (default: "css")
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// SourceMap writes <name>.css.map next to the stylesheet (default: true)
	SourceMap bool `mapstructure:"source_map" yaml:"source_map"`
	// Minify compresses the compiled stylesheet (default: true)
	Minify bool `mapstructure:"minify" yaml:"minify"`
}

// MarkupConfig controls HTML handling
type MarkupConfig struct {
	// Minify collapses whitespace in top-level HTML files (default: true).
	// When false, the html task copies the files unchanged.
	Minify bool `mapstructure:"minify" yaml:"minify"`
}

// ImagesConfig controls raster encoding quality
type ImagesConfig struct {
	// WebPQuality is the cwebp quality factor, 0-100 (default: 80)
	WebPQuality int `mapstructure:"webp_quality" yaml:"webp_quality"`
	// JPEGQuality is the re-encode quality used by images:optimize, 1-100 (default: 75)
	JPEGQuality int `mapstructure:"jpeg_quality" yaml:"jpeg_quality"`
}

// ServerConfig controls the development server
type ServerConfig struct {
	// Host is the bind address (default: "localhost")
	Host string `mapstructure:"host" yaml:"host"`
	// Port is the listen port; 0 picks a free port (default: 3000)
	Port int `mapstructure:"port" yaml:"port"`
	// CORS adds permissive Access-Control-* headers (default: true)
	CORS bool `mapstructure:"cors" yaml:"cors"`
	// OpenPath is the path printed as the browse URL on startup (default: "/")
	OpenPath string `mapstructure:"open_path" yaml:"open_path"`
}

// WatchConfig controls incremental rebuilds
type WatchConfig struct {
	// DebounceMs is the quiescence window in milliseconds (default: 100)
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// ConvertersConfig names the external tools used by converters
type ConvertersConfig struct {
	// Lessc is the LESS compiler executable (default: "lessc")
	Lessc string `mapstructure:"lessc" yaml:"lessc"`
	// LesscArgs are extra arguments passed before the input file,
	// e.g. plugin flags
	LesscArgs []string `mapstructure:"lessc_args" yaml:"lessc_args"`
	// Cwebp is the WebP encoder executable (default: "cwebp")
	Cwebp string `mapstructure:"cwebp" yaml:"cwebp"`
}

// LoggingConfig controls diagnostic logging
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "warn")
	Level string `mapstructure:"level" yaml:"level"`
	// Format is "text" or "json" (default: "text")
	Format string `mapstructure:"format" yaml:"format"`
	// File appends JSON logs to this path instead of stderr (default: "")
	File string `mapstructure:"file" yaml:"file"`
}

// ConsoleConfig controls the human-readable build log
type ConsoleConfig struct {
	// Color is "auto", "always" or "never" (default: "auto")
	Color string `mapstructure:"color" yaml:"color"`
}

// DebounceWindow returns the quiescence window as a time.Duration
func (w *WatchConfig) DebounceWindow() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// ResolveRoot returns the project root. An empty Root resolves to baseDir.
func (p *PathsConfig) ResolveRoot(baseDir string) string {
	if p.Root == "" {
		return baseDir
	}
	return resolve(p.Root, baseDir)
}

// ResolveSource returns the absolute source tree path.
func (p *PathsConfig) ResolveSource(baseDir string) string {
	return resolve(p.Source, p.ResolveRoot(baseDir))
}

// ResolveOutput returns the absolute output tree path.
func (p *PathsConfig) ResolveOutput(baseDir string) string {
	return resolve(p.Output, p.ResolveRoot(baseDir))
}

// resolve expands ~ and makes path absolute relative to base.
func resolve(path, base string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path)
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Root:   "",
			Source: "source",
			Output: "build",
		},
		Styles: StylesConfig{
			Entry:     "less/style.less",
			OutputDir: "css",
			SourceMap: true,
			Minify:    true,
		},
		Markup: MarkupConfig{
			Minify: true,
		},
		Images: ImagesConfig{
			WebPQuality: 80,
			JPEGQuality: 75,
		},
		Server: ServerConfig{
			Host:     "localhost",
			Port:     3000,
			CORS:     true,
			OpenPath: "/",
		},
		Watch: WatchConfig{
			DebounceMs: 100,
		},
		Converters: ConvertersConfig{
			Lessc:     "lessc",
			LesscArgs: []string{},
			Cwebp:     "cwebp",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			File:   "",
		},
		Console: ConsoleConfig{
			Color: "auto",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("paths.root", defaults.Paths.Root)
	viper.SetDefault("paths.source", defaults.Paths.Source)
	viper.SetDefault("paths.output", defaults.Paths.Output)

	viper.SetDefault("styles.entry", defaults.Styles.Entry)
	viper.SetDefault("styles.output_dir", defaults.Styles.OutputDir)
	viper.SetDefault("styles.source_map", defaults.Styles.SourceMap)
	viper.SetDefault("styles.minify", defaults.Styles.Minify)

	viper.SetDefault("markup.minify", defaults.Markup.Minify)

	viper.SetDefault("images.webp_quality", defaults.Images.WebPQuality)
	viper.SetDefault("images.jpeg_quality", defaults.Images.JPEGQuality)

	viper.SetDefault("server.host", defaults.Server.Host)
	viper.SetDefault("server.port", defaults.Server.Port)
	viper.SetDefault("server.cors", defaults.Server.CORS)
	viper.SetDefault("server.open_path", defaults.Server.OpenPath)

	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	viper.SetDefault("converters.lessc", defaults.Converters.Lessc)
	viper.SetDefault("converters.lessc_args", defaults.Converters.LesscArgs)
	viper.SetDefault("converters.cwebp", defaults.Converters.Cwebp)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
	viper.SetDefault("logging.file", defaults.Logging.File)

	viper.SetDefault("console.color", defaults.Console.Color)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load against a specific viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sitepipe")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sitepipe"
	}
	return filepath.Join(home, ".config", "sitepipe")
}

// ConfigFile returns the path to the user-level config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
