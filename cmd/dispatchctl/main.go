// Command dispatchctl is an operator CLI for a running dispatchd instance.
package main

import (
	"fmt"
	"os"

	"github.com/tupyy/dispatch-agent/cmd/dispatchctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
