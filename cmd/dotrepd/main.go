package main

import (
	"os"

	"github.com/dotrep-network/dotrep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
