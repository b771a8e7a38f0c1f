// Completion: 100% - Entry point complete
package main

import (
	"os"
)

const versionString = "expjit 1.0.0"

func main() {
	os.Exit(RunCLI(os.Args[1:], os.Stdout, os.Stderr))
}
