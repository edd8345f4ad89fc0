package main

import (
	"os"

	"github.com/openkraft/spackstyle/internal/adapters/inbound/cli"
)

func main() {
	os.Exit(cli.ExitCode(cli.Execute()))
}
