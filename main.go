package main

import (
	"os"

	"github.com/nigilism131313-png/dataforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
