package main

import (
	"os"

	"github.com/dshills/vuln-analyzer/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
