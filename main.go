package main

import (
	"os"

	"github.com/skillprep/assess/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
