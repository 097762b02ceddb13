// Command ledgerctl imports invoice exports and prints ledger figures from
// the configured storage backend.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&app{out: os.Stdout}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
