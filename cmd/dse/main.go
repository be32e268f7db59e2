package main

import (
	"os"

	"github.com/GoSim-25-26J-441/platform-dse/cmd/dse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
