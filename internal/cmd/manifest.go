package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/sitepipe/sitepipe/internal/manifest"
	"github.com/spf13/cobra"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Fingerprint the output tree",
	Long: `Print a blake3 hash and size for every file in the output tree,
followed by a digest of the whole tree.

Two builds of the same source tree produce the same digest.`,
	Args: cobra.NoArgs,
	RunE: runManifest,
}

var manifestDigestOnly bool

func init() {
	rootCmd.AddCommand(manifestCmd)

	manifestCmd.Flags().BoolVar(&manifestDigestOnly, "digest", false, "print only the tree digest")
}

func runManifest(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	a.quiet()

	m, err := manifest.Compute(a.env.Fs, a.env.Out.Root())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if manifestDigestOnly {
		_, _ = fmt.Fprintln(out, m.Digest())
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range m.Entries() {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", e.Hash, e.Size, e.Path)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "\n%d file(s), digest %s\n", m.Len(), m.Digest())
	return nil
}
