package cmd

import (
	"github.com/sitepipe/sitepipe/internal/console"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Produce a production output tree",
	Long: `Run the build pipeline once: clean the output tree, copy fonts, then
compile stylesheets, minify markup, optimize vector and raster images,
assemble the icon sprite and encode WebP variants in parallel.

The output tree is replaced on every run. Exits non-zero if any stage fails.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	res, elapsed, err := a.runPipeline(cmd.Context(), a.set.Build)
	if err != nil {
		a.reporter.Failure(err)
		return err
	}
	a.reporter.Success("Built %d file(s) into %s in %s", len(res.Outputs), a.env.Out.Root(), console.FormatDuration(elapsed))
	return nil
}
