// main is the entry point for the capcurve CLI.
package main

import (
	"fmt"
	"os"

	"github.com/capcurve/capcurve/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
