// Command joinkit validates, explains and runs declarative join queries.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/joinkit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own failures as ExitErrors; anything else
		// is a flag or argument error from cobra.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(exitErr.Code)
	}
}
