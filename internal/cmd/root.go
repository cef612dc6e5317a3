package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sitepipe/sitepipe/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// configErr is set when an explicitly named config file cannot be read.
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "sitepipe",
	Short: "Static asset build pipeline with a live-reloading dev server",
	Long: `sitepipe compiles stylesheets, minifies markup, optimizes vector and
raster images and assembles an icon sprite from a source tree into an
output tree.

Without a subcommand it runs the dev pipeline: a full build followed by a
local server and a watcher that rebuilds and reloads on change.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runDev,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by the caller.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./sitepipe.yaml, then $XDG_CONFIG_HOME/sitepipe/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "project directory (default is the config file's directory)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("color", "", "console color: auto, always, never")
}

func initConfig() {
	// A .env in the working directory may carry SITEPIPE_* overrides.
	// Existing environment variables win.
	_ = godotenv.Load(".env")

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if file := configFileToUse(); file != "" {
		viper.SetConfigFile(file)
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SITEPIPE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SITEPIPE_SERVER_PORT for server.port
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("paths.root", flags.Lookup("root"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("console.color", flags.Lookup("color"))
	_ = viper.BindPFlag("server.port", devCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", devCmd.Flags().Lookup("host"))

	// Read config file if it exists. Only an explicit --config must exist.
	configErr = nil
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		configErr = fmt.Errorf("read config %s: %w", cfgFile, err)
	}
}

// configFileToUse picks the --config file, the project file in the working
// directory, or the user config file, in that order. It returns "" when
// none exists.
func configFileToUse() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(config.ProjectFileName); err == nil {
		return config.ProjectFileName
	}
	if _, err := os.Stat(config.ConfigFile()); err == nil {
		return config.ConfigFile()
	}
	return ""
}

// baseDir is the directory relative paths in the config resolve against:
// the directory of a project config file, otherwise the working directory.
func baseDir() (string, error) {
	used := viper.ConfigFileUsed()
	if used != "" && used != config.ConfigFile() {
		abs, err := filepath.Abs(used)
		if err != nil {
			return "", err
		}
		return filepath.Dir(abs), nil
	}
	return os.Getwd()
}
