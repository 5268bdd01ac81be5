// Package cliutil provides the small set of helpers the command-line
// drivers share: fatal-error reporting.
package cliutil

import (
	"fmt"
	"os"
)

// ExitIfError prints prefix and err to stderr and exits with status 1
// if err is non-nil. It is a no-op otherwise.
func ExitIfError(prefix string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, err.Error())
		os.Exit(1)
	}
}
