package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sitepipe/sitepipe/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create sitepipe configuration",
	Long: `View or create sitepipe configuration.

Without arguments, displays the effective configuration.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration as YAML",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a commented sitepipe.yaml",
	Long: `Create a commented sitepipe.yaml in the current directory with every
available option. With --user, write the user config file instead.`,
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path and search order",
	RunE:  runConfigPath,
}

var (
	configInitUser  bool
	configInitForce bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().BoolVar(&configInitUser, "user", false, "write "+config.ConfigFile()+" instead")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return configErr
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		_, _ = fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		_, _ = fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// configTemplate is written by config init. Values are the defaults.
const configTemplate = `# sitepipe configuration
# Every key can be overridden with SITEPIPE_<SECTION>_<KEY>, e.g.
# SITEPIPE_SERVER_PORT=8080.

paths:
  # Project directory; empty means the directory of this file
  root: ""
  # Source tree, relative to root
  source: source
  # Output tree, relative to root. Deleted and recreated on every build.
  output: build

styles:
  # Stylesheet entry point, relative to the source tree
  entry: less/style.less
  # Output subdirectory for the compiled stylesheet
  output_dir: css
  # Write <name>.css.map next to the stylesheet
  source_map: true
  # Compress the compiled stylesheet. With source_map on, lessc compresses
  # so the map stays exact; otherwise the CSS minifier runs afterwards.
  minify: true

markup:
  # Collapse whitespace in top-level HTML files.
  # When false, HTML is copied unchanged.
  minify: true

images:
  # WebP quality factor (0-100)
  webp_quality: 80
  # JPEG re-encode quality used by images:optimize (1-100)
  jpeg_quality: 75

server:
  host: localhost
  # 0 picks a free port
  port: 3000
  cors: true
  # Path printed as the browse URL on startup
  open_path: /

watch:
  # Quiet period after the last change before a rebuild starts
  debounce_ms: 100

converters:
  # LESS compiler executable
  lessc: lessc
  # Extra arguments passed to lessc, e.g. plugin flags. Vendor prefixes
  # need less-plugin-autoprefix: ["--autoprefix=last 2 versions"]
  lessc_args: []
  # WebP encoder executable
  cwebp: cwebp

logging:
  # debug, info, warn, error
  level: warn
  # text or json
  format: text
  # Append JSON logs to this file instead of stderr
  file: ""

console:
  # auto, always, never
  color: auto
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	target := config.ProjectFileName
	if configInitUser {
		target = config.ConfigFile()
	}

	// Check if config file already exists
	if _, err := os.Stat(target); err == nil && !configInitForce {
		return fmt.Errorf("config file already exists at %s\nUse --force to overwrite it", target)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", target)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		_, _ = fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		_, _ = fmt.Fprintln(out, "Active config: (none - using defaults)")
	}

	// Also show config search paths
	_, _ = fmt.Fprintln(out, "\nSearch order:")
	_, _ = fmt.Fprintln(out, "  1. --config flag")
	_, _ = fmt.Fprintf(out, "  2. ./%s (current directory)\n", config.ProjectFileName)
	_, _ = fmt.Fprintf(out, "  3. %s\n", config.ConfigFile())
	_, _ = fmt.Fprintln(out, "\nEnvironment variables: SITEPIPE_* (e.g., SITEPIPE_SERVER_PORT)")
	_, _ = fmt.Fprintln(out, "A .env file in the current directory is loaded first.")

	return nil
}
