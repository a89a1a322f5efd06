// The main package for the clientdiscovery executable.
package main

import (
	"github.com/JakeFAU/indieauth-client-discovery/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
