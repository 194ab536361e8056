// Package cli provides the command-line interface for CortexFin
package cli

import (
	"fmt"
	"io"
	"os"
)

// Run starts the CLI application and exits with its status code.
func Run() {
	os.Exit(Execute(os.Args[1:], os.Stdout, os.Stderr))
}

// Execute runs the root command with the given arguments and returns the
// process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
