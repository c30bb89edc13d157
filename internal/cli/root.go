package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/andreyvit/tightdb"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	SeqURL  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the tightdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "tightdb",
		Short:         "Inspect and create tightdb group files",
		Long:          "Command-line tools for tightdb files: embedded tables with nested subtables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.SeqURL, "seq-url", "", "also send logs to this Seq server")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))

	return cmd
}

// openGroup opens a group file with logging configured from the global
// flags. The returned function closes both.
func openGroup(opts *RootOptions, errOut io.Writer, path string) (*tightdb.Group, func(), error) {
	logger, closeLog := SetupLogger(errOut, opts.Verbose, opts.SeqURL)
	g, err := tightdb.Open(path, tightdb.Options{
		Logger:  logger,
		Verbose: opts.Verbose,
	})
	if err != nil {
		closeLog()
		return nil, nil, WrapExitError(ExitCommandError, "cannot open "+path, err)
	}
	return g, func() {
		if err := g.Close(); err != nil {
			logger.Error("closing group", slog.String("path", path), slog.Any("error", err))
		}
		closeLog()
	}, nil
}
