// flowctl is the operator CLI for nurturing campaign flows: scaffold,
// validate, import/export, preview timelines and render diagrams.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCmd(newApp())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
