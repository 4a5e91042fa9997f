// Command gridctl lists, edits and exports admin tables from the terminal.
//
// Tables come either from a JSON file of records (--in) or from the backend
// (--table). Paste and bulk add run the same reconciler as the web grid and
// print the resulting table.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal for the CLI.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
