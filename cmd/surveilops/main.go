// Command surveilops runs the market surveillance tool platform: one
// MCP tool service per process over stdio, or the dashboard HTTP
// gateway.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "surveilops:", err)
		os.Exit(1)
	}
}
