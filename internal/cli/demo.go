package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/andreyvit/tightdb"
	"github.com/spf13/cobra"
)

var (
	PhoneSpec = tightdb.DefineSpec(func(b *tightdb.SpecBuilder) {
		b.String("type")
		b.String("number")
	})
	EmployeeSpec = tightdb.DefineSpec(func(b *tightdb.SpecBuilder) {
		b.String("firstName")
		b.String("lastName")
		b.Int("salary")
		b.Bool("driver")
		b.Date("birthdate")
		b.Subtable("phones", PhoneSpec)
	})
)

// DemoEmployees are the rows `tightdb demo` writes into the employees table.
var DemoEmployees = [][]any{
	{"John", "Doe", 10000, true, time.Date(1980, 5, 1, 0, 0, 0, 0, time.UTC), [][]any{
		{"home", "123"},
	}},
	{"Johny", "B. Good", 20000, false, time.Date(1985, 7, 12, 0, 0, 0, 0, time.UTC), [][]any{
		{"mobile", "456"},
		{"work", "789"},
	}},
	{"Nikolche", "Mihajlovski", 30000, true, time.Date(1990, 1, 30, 0, 0, 0, 0, time.UTC), [][]any{
		{"home", "123"},
		{"mobile", "012"},
		{"work", "345"},
	}},
}

// NewDemoCommand creates the command that writes a sample employees table.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo FILE",
		Short: "Write a sample employees table with phone subtables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, rootOpts, args[0])
		},
	}
}

// PopulateDemo adds the employees table to g, unless it already exists.
func PopulateDemo(g *tightdb.Group) (*tightdb.Table, error) {
	if tbl := g.Table("employees"); tbl != nil {
		return tbl, nil
	}
	tbl, err := g.AddTable("employees", EmployeeSpec)
	if err != nil {
		return nil, err
	}
	for _, row := range DemoEmployees {
		if _, err := tbl.Add(row...); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func runDemo(cmd *cobra.Command, opts *RootOptions, path string) error {
	g, done, err := openGroup(opts, cmd.ErrOrStderr(), path)
	if err != nil {
		return err
	}
	defer done()

	tbl, err := PopulateDemo(g)
	if err != nil {
		return WrapExitError(ExitFailure, "demo", err)
	}
	if err := g.Commit(cmd.Context()); err != nil {
		return WrapExitError(ExitFailure, "commit failed", err)
	}
	n, err := tbl.Size()
	if err != nil {
		return WrapExitError(ExitFailure, "demo", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Print(map[string]any{"table": tbl.Name(), "rows": n}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s: %d rows\n", tbl.Name(), n)
		return err
	})
}
