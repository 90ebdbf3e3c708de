package main

import (
	"os"

	"github.com/mdfx-dev/mdfx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
