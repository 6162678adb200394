// conductor is the entry point for the task-loop execution engine. All
// actual work happens in the cmd package; main only hands off to Cobra.
package main

import (
	"fmt"
	"os"

	"github.com/ralphlabs/conductor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "conductor: %v\n", err)
		os.Exit(1)
	}
}
