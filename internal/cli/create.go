package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	SchemaPath string
}

// NewCreateCommand creates the command that adds tables from a YAML schema.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create FILE",
		Short: "Create tables described by a YAML schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.SchemaPath, "schema", "s", "", "YAML schema file (required)")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runCreate(cmd *cobra.Command, opts *CreateOptions, path string) error {
	data, err := os.ReadFile(opts.SchemaPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot read schema", err)
	}
	sf, err := ParseSchema(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid schema", err)
	}

	g, done, err := openGroup(opts.RootOptions, cmd.ErrOrStderr(), path)
	if err != nil {
		return err
	}
	defer done()

	var created []string
	for _, td := range sf.Tables {
		spec, err := td.Spec()
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid schema", err)
		}
		if _, err := g.AddTable(td.Name, spec); err != nil {
			return WrapExitError(ExitFailure, "cannot create table", err)
		}
		created = append(created, td.Name)
	}
	if err := g.Commit(cmd.Context()); err != nil {
		return WrapExitError(ExitFailure, "commit failed", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Print(map[string]any{"created": created}, func(w io.Writer) error {
		for _, name := range created {
			fmt.Fprintf(w, "created %s\n", name)
		}
		return nil
	})
}
