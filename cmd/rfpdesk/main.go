package main

import (
	"os"

	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
