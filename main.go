package main

import (
	"os"

	"github.com/nstehr/uburu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
