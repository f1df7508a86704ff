// Package main provides the movierec CLI.
//
// Usage:
//
//	movierec [flags] <command> [flags]
//
// Commands:
//
//	converse - interview the user and print the collected profile
//	explain  - ask the model to justify a recommendation for a MovieLens user
//	rank     - ask the model to order held-out movies for a MovieLens user
//	serve    - expose explain and rank over HTTP
package main

import (
	"fmt"
	"os"

	"github.com/andrew/llm-movie-rec/cmd/movierec/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
