package config

import (
	"fmt"
	"os"
)

// Exitf reports a startup failure on stderr as "arena: <message>" and exits
// with status 1. Only main calls it, before the runner starts.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "arena: "+format+"\n", args...)
	os.Exit(1)
}
