// ./main.go
package main

import (
	"github.com/xkilldash9x/crxflow-cli/cmd"
)

// main is the entry point for the crxflow CLI.
func main() {
	// All command-line parsing, configuration, and execution lives in cmd.
	cmd.Execute()
}
