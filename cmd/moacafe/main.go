// Command moacafe is the café table-ordering client.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/moacafe/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
