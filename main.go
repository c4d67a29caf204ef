// The main package for the redline executable.
package main

import (
	"github.com/redline-bd/redline/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
