package main

import (
	"fmt"
	"os"

	"github.com/andreyvit/tightdb/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tightdb:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
