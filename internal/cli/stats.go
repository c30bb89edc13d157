package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// TableSummary is one line of `tightdb stats` output.
type TableSummary struct {
	Name       string `json:"name"`
	Spec       string `json:"spec"`
	Rows       int    `json:"rows"`
	Subtables  int    `json:"subtables"`
	NestedRows int    `json:"nested_rows"`
	MaxDepth   int    `json:"max_depth"`
}

// NewStatsCommand creates the command that summarizes table sizes.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Summarize the tables of a group file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, rootOpts, args[0])
		},
	}
}

func runStats(cmd *cobra.Command, opts *RootOptions, path string) error {
	g, done, err := openGroup(opts, cmd.ErrOrStderr(), path)
	if err != nil {
		return err
	}
	defer done()

	var summaries []TableSummary
	for _, name := range g.TableNames() {
		tbl := g.Table(name)
		s, err := tbl.Stats()
		if err != nil {
			return WrapExitError(ExitFailure, "stats", err)
		}
		spec, err := tbl.Spec()
		if err != nil {
			return WrapExitError(ExitFailure, "stats", err)
		}
		summaries = append(summaries, TableSummary{
			Name:       name,
			Spec:       spec.String(),
			Rows:       s.Rows,
			Subtables:  s.Subtables,
			NestedRows: s.NestedRows,
			MaxDepth:   s.MaxDepth,
		})
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Print(summaries, func(w io.Writer) error {
		for _, s := range summaries {
			fmt.Fprintf(w, "%s: %d rows, %d subtables, %d nested rows, depth %d\n", s.Name, s.Rows, s.Subtables, s.NestedRows, s.MaxDepth)
		}
		return nil
	})
}
