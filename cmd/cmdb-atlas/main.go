// Command cmdb-atlas builds atlases of Boolean switching networks.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/shaunharker/conley-morse-database/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report ExitErrors themselves; anything else (bad
		// arguments, unknown flags) is printed here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
