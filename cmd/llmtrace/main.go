// Command llmtrace normalizes recorded LLM exchanges into trace steps and
// ships them to a trace collector.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
