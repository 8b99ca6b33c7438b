package main

import (
	"os"

	"github.com/nao1215/pgimport/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
