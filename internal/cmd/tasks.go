package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sitepipe/sitepipe/internal/task"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List registered tasks",
	Long: `List every registered task with its output kind.

With --tree, print the structure of a pipeline instead, e.g.
  sitepipe tasks --tree build`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTasks,
}

var tasksTree bool

func init() {
	rootCmd.AddCommand(tasksCmd)

	tasksCmd.Flags().BoolVar(&tasksTree, "tree", false, "print the composite structure of a task (default: the dev pipeline)")
}

func runTasks(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	a.quiet()

	out := cmd.OutOrStdout()

	if tasksTree {
		root := a.set.Dev
		if len(args) == 1 {
			if root, err = a.registry.Lookup(args[0]); err != nil {
				return err
			}
		}
		task.Walk(root, func(t task.Task, depth int) {
			_, _ = fmt.Fprintf(out, "%s%s%s\n", strings.Repeat("  ", depth), t.Name(), describeTask(t))
		})
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tKIND\tTYPE")
	for _, name := range a.registry.Names() {
		t := a.registry.MustLookup(name)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", name, t.Kind(), taskType(t))
	}
	return w.Flush()
}

// taskType is "series", "parallel" or "task".
func taskType(t task.Task) string {
	if c, ok := task.Unwrap(t).(*task.Composite); ok {
		return c.Mode().String()
	}
	return "task"
}

func describeTask(t task.Task) string {
	if typ := taskType(t); typ != "task" {
		return " (" + typ + ")"
	}
	return ""
}
