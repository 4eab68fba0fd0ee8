// Command uniclaim runs the UniClaim claim-consistency tools.
package main

import (
	"fmt"
	"os"

	"github.com/uniclaim/claimsync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
