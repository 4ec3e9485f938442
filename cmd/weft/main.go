// Command weft renders markup trees with the incremental engine, runs
// conformance scenarios and inspects pass journals.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/weft/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "weft: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
