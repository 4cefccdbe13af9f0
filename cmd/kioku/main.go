// Package main implements the entry point for the kioku CLI, a spaced
// repetition flashcard tool for Japanese study backed by a local sqlite
// database.
package main

import (
	"os"

	"github.com/hakusan/kioku/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
