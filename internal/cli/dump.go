package cli

import (
	"io"

	"github.com/andreyvit/tightdb"
	"github.com/spf13/cobra"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Stats     bool
	Subtables bool
}

// NewDumpCommand creates the command that prints a group's contents.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every table of a group file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "include per-table statistics")
	cmd.Flags().BoolVar(&opts.Subtables, "subtables", true, "include subtable rows")

	return cmd
}

func (opts *DumpOptions) flags() tightdb.DumpFlags {
	f := tightdb.DumpTableHeaders | tightdb.DumpRows
	if opts.Stats {
		f |= tightdb.DumpStats
	}
	if opts.Subtables {
		f |= tightdb.DumpSubtables
	}
	return f
}

func runDump(cmd *cobra.Command, opts *DumpOptions, path string) error {
	g, done, err := openGroup(opts.RootOptions, cmd.ErrOrStderr(), path)
	if err != nil {
		return err
	}
	defer done()

	text := g.Dump(opts.flags())
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Print(map[string]any{"id": g.ID().String(), "dump": text}, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
}
