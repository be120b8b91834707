// Command dispatchd runs the dispatch agent server process.
package main

import (
	"fmt"
	"os"

	"github.com/tupyy/dispatch-agent/cmd/dispatchd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
