// ABOUTME: Entry point for the continua scheduler CLI
// ABOUTME: Command-line tool for running retraining scheduling experiments

package main

import (
	"fmt"
	"os"

	"github.com/continua-ai/continua/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
