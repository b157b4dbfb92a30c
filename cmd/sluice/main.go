package main

import (
	"os"

	"github.com/majorcontext/sluice/cmd/sluice/cli"
	_ "github.com/majorcontext/sluice/internal/providers" // credential sources
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
