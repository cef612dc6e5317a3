package cmd

import (
	"github.com/sitepipe/sitepipe/internal/console"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run a single registered task",
	Long: `Run one task by name, e.g. "styles" or "images:optimize".

The task runs against the current output tree without cleaning it first.
Use 'sitepipe tasks' to list the registered names.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskNames,
	RunE:              runTask,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runTask(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	t, err := a.registry.Lookup(args[0])
	if err != nil {
		return err
	}

	res, elapsed, err := a.runPipeline(cmd.Context(), t)
	if err != nil {
		a.reporter.Failure(err)
		return err
	}
	a.reporter.Success("Wrote %d file(s) in %s", len(res.Outputs), console.FormatDuration(elapsed))
	return nil
}

func completeTaskNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	a, err := newApp(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer func() { _ = a.Close() }()
	return a.registry.Names(), cobra.ShellCompDirectiveNoFileComp
}
