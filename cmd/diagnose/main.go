// Command diagnose runs one diagnosis offline against a catalogue file.
//
//	diagnose --answers answers.json
//	diagnose --catalog design.yaml --validate
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
