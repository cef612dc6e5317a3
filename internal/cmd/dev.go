package cmd

import (
	"context"

	"github.com/sitepipe/sitepipe/internal/errors"
	"github.com/spf13/cobra"
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Build, serve and rebuild on change",
	Long: `Run the dev pipeline: clean the output tree, copy and compile every
asset, then serve the output tree and watch the source tree.

Stylesheet changes are pushed to connected browsers without a reload;
markup and image changes reload every page. A failed rebuild is reported
and the session keeps running. Interrupt to stop.`,
	Args: cobra.NoArgs,
	RunE: runDev,
}

func init() {
	rootCmd.AddCommand(devCmd)

	devCmd.Flags().Int("port", 0, "dev server port (default from config, 3000)")
	devCmd.Flags().String("host", "", "dev server bind address (default from config, localhost)")
}

func runDev(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	_, _, err = a.runPipeline(cmd.Context(), a.set.Dev)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		a.reporter.Failure(err)
		return err
	}
	return nil
}
