package main

import (
	"os"

	"github.com/fennwick/keepsake/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
