// The main package for the slotscout executable.
package main

import (
	"github.com/slotscout/slotscout/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
