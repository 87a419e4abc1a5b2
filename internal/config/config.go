package config

import (
	"fmt"
	"os"
)

// Verbose enables debug output when true.
var Verbose bool

// Debugf prints a debug line to stderr when Verbose is true. Stderr
// keeps the debug stream out of the progress UI on stdout.
func Debugf(format string, args ...any) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "debug: "+format+"\n", args...)
	}
}
