package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sitepipe/sitepipe/internal/config"
	"github.com/sitepipe/sitepipe/internal/errors"
	"github.com/sitepipe/sitepipe/internal/exitcode"
	"github.com/sitepipe/sitepipe/internal/manifest"
	"github.com/sitepipe/sitepipe/internal/testutil"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(t *testing.T, root *cobra.Command, args ...string) (output string, err error) {
	t.Helper()

	viper.Reset()
	cfgFile = ""
	tasksTree = false
	manifestDigestOnly = false
	configInitUser = false
	configInitForce = false

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// setupProject writes a source tree and a sitepipe.yaml next to it, and
// isolates the user config directory.
func setupProject(t *testing.T, files map[string]string, yaml string) (dir, configPath string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir = testutil.SetupProject(t, files)
	configPath = filepath.Join(dir, config.ProjectFileName)
	content := "console:\n  color: never\n" + yaml
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir, configPath
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "sitepipe" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "sitepipe")
	}

	expectedCmds := []string{"dev", "build", "run", "tasks", "manifest", "config"}
	cmdMap := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		cmdMap[c.Name()] = true
	}
	for _, name := range expectedCmds {
		if !cmdMap[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}

	if rootCmd.RunE == nil {
		t.Error("root command should run the dev pipeline")
	}
}

func TestTasksCommand_ListsRegistry(t *testing.T) {
	_, cfg := setupProject(t, nil, "")

	out, err := executeCommand(t, rootCmd, "tasks", "--config", cfg)
	if err != nil {
		t.Fatalf("tasks error = %v\n%s", err, out)
	}

	for _, want := range []string{"NAME", "styles", "images:optimize", "webp", "serve", "watch", "default", "build"} {
		if !strings.Contains(out, want) {
			t.Errorf("tasks output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Starting") {
		t.Errorf("tasks output should not contain build log lines:\n%s", out)
	}
}

func TestTasksCommand_Tree(t *testing.T) {
	_, cfg := setupProject(t, nil, "")

	out, err := executeCommand(t, rootCmd, "tasks", "--tree", "build", "--config", cfg)
	if err != nil {
		t.Fatalf("tasks --tree error = %v\n%s", err, out)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "build (series)" {
		t.Errorf("first line = %q, want %q", lines[0], "build (series)")
	}
	for _, want := range []string{"\n  clean\n", "\n  build:assets (parallel)\n", "\n    images:optimize\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
}

func TestRunCommand_Copy(t *testing.T) {
	dir, cfg := setupProject(t, map[string]string{
		"fonts/a.woff2": "font",
		"index.html":    "<p>hi</p>",
	}, "")

	out, err := executeCommand(t, rootCmd, "run", "copy", "--config", cfg)
	if err != nil {
		t.Fatalf("run copy error = %v\n%s", err, out)
	}

	got := testutil.ListTree(t, afero.NewOsFs(), filepath.Join(dir, "build"))
	want := []string{"fonts/a.woff2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("output tree = %v, want %v", got, want)
	}
	if !strings.Contains(out, "Starting 'copy'...") {
		t.Errorf("missing start line:\n%s", out)
	}
	if !strings.Contains(out, "Finished 'copy' after") {
		t.Errorf("missing finish line:\n%s", out)
	}
}

func TestRunCommand_HTMLWithoutMinify(t *testing.T) {
	dir, cfg := setupProject(t, map[string]string{
		"index.html": "<p>  hi  </p>\n",
	}, "markup:\n  minify: false\n")

	out, err := executeCommand(t, rootCmd, "run", "html", "--config", cfg)
	if err != nil {
		t.Fatalf("run html error = %v\n%s", err, out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "build", "index.html"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "<p>  hi  </p>\n" {
		t.Errorf("index.html = %q, want it copied unchanged", data)
	}
}

func TestRunCommand_UnknownTask(t *testing.T) {
	_, cfg := setupProject(t, nil, "")

	_, err := executeCommand(t, rootCmd, "run", "nope", "--config", cfg)
	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Fatalf("run nope error = %v, want ErrTaskNotFound", err)
	}
}

func TestRunCommand_RequiresName(t *testing.T) {
	_, cfg := setupProject(t, nil, "")

	_, err := executeCommand(t, rootCmd, "run", "--config", cfg)
	if err == nil {
		t.Fatal("run without a task name should fail")
	}
	if code := exitcode.DetermineExitCode(err); code != exitcode.UsageError {
		t.Errorf("exit code = %d, want %d (%v)", code, exitcode.UsageError, err)
	}
}

func TestBuildCommand_MissingConverter(t *testing.T) {
	dir, cfg := setupProject(t, map[string]string{
		"less/style.less": "a { color: red; }",
		"fonts/a.woff2":   "font",
	}, "converters:\n  lessc: sitepipe-test-no-such-lessc\n")

	out, err := executeCommand(t, rootCmd, "build", "--config", cfg)
	if err == nil {
		t.Fatalf("build should fail without a stylesheet compiler\n%s", out)
	}
	if code := exitcode.DetermineExitCode(err); code != exitcode.ConverterUnavailable {
		t.Errorf("exit code = %d, want %d (%v)", code, exitcode.ConverterUnavailable, err)
	}
	if !strings.Contains(out, "Failed:") {
		t.Errorf("missing failure line:\n%s", out)
	}

	// Stages before the failing one still ran.
	if _, statErr := os.Stat(filepath.Join(dir, "build", "fonts", "a.woff2")); statErr != nil {
		t.Errorf("copy output missing: %v", statErr)
	}
}

func TestManifestCommand(t *testing.T) {
	dir, cfg := setupProject(t, map[string]string{
		"fonts/a.woff2": "font",
		"fonts/b.woff":  "other",
	}, "")

	if out, err := executeCommand(t, rootCmd, "run", "copy", "--config", cfg); err != nil {
		t.Fatalf("run copy error = %v\n%s", err, out)
	}

	out, err := executeCommand(t, rootCmd, "manifest", "--digest", "--config", cfg)
	if err != nil {
		t.Fatalf("manifest error = %v\n%s", err, out)
	}

	m, err := manifest.Compute(afero.NewOsFs(), filepath.Join(dir, "build"))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if strings.TrimSpace(out) != m.Digest() {
		t.Errorf("manifest --digest = %q, want %q", strings.TrimSpace(out), m.Digest())
	}

	out, err = executeCommand(t, rootCmd, "manifest", "--config", cfg)
	if err != nil {
		t.Fatalf("manifest error = %v", err)
	}
	if !strings.Contains(out, "fonts/a.woff2") || !strings.Contains(out, "2 file(s)") {
		t.Errorf("manifest output:\n%s", out)
	}
}

func TestConfigShow(t *testing.T) {
	_, cfg := setupProject(t, nil, "server:\n  port: 4000\n")

	out, err := executeCommand(t, rootCmd, "config", "show", "--config", cfg)
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "port: 4000") {
		t.Errorf("config show missing file value:\n%s", out)
	}
	if !strings.Contains(out, "entry: less/style.less") {
		t.Errorf("config show missing default:\n%s", out)
	}
}

func TestConfigShow_EnvOverride(t *testing.T) {
	_, cfg := setupProject(t, nil, "server:\n  port: 4000\n")
	t.Setenv("SITEPIPE_SERVER_PORT", "4100")

	out, err := executeCommand(t, rootCmd, "config", "show", "--config", cfg)
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "port: 4100") {
		t.Errorf("env var should override config file:\n%s", out)
	}
}

func TestConfig_InvalidFile(t *testing.T) {
	_, cfg := setupProject(t, nil, "images:\n  webp_quality: 500\n")

	_, err := executeCommand(t, rootCmd, "build", "--config", cfg)
	if code := exitcode.DetermineExitCode(err); code != exitcode.ConfigError {
		t.Errorf("exit code = %d, want %d (%v)", code, exitcode.ConfigError, err)
	}
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := executeCommand(t, rootCmd, "config", "show", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("a missing --config file should be an error")
	}
}

func TestConfigInit(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := executeCommand(t, rootCmd, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(out, config.ProjectFileName) {
		t.Errorf("config init output = %q", out)
	}

	// The template must load back to the defaults.
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, config.ProjectFileName))
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}
	cfg, err := config.LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	def := config.Default()
	if cfg.Server.Port != def.Server.Port || cfg.Styles.Entry != def.Styles.Entry || cfg.Watch.DebounceMs != def.Watch.DebounceMs {
		t.Errorf("template config = %+v, want defaults", cfg)
	}

	if _, err := executeCommand(t, rootCmd, "config", "init"); err == nil {
		t.Error("config init should refuse to overwrite without --force")
	}
	if _, err := executeCommand(t, rootCmd, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	_, cfg := setupProject(t, nil, "")

	out, err := executeCommand(t, rootCmd, "config", "path", "--config", cfg)
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if !strings.Contains(out, "Active config: "+cfg) {
		t.Errorf("config path output:\n%s", out)
	}
	if !strings.Contains(out, "SITEPIPE_") {
		t.Errorf("config path should mention env vars:\n%s", out)
	}
}
