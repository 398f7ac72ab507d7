package main

import (
	"fmt"
	"os"

	"github.com/h5interop/h5interop/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
