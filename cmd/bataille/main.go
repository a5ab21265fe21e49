package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
)

const usage = `usage: %s <command> [flags]

commands:
  serve   run the HTTP API
  demo    play a game against an in-process beacon
  fetch   read a round from a drand relay
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}

	// Create a new slog logger with the default PTerm logger
	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:], logger)
	case "demo":
		err = runDemo(os.Args[2:], logger)
	case "fetch":
		err = runFetch(os.Args[2:], logger)
	default:
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}
	if err != nil {
		logger.Error(os.Args[1]+" failed", "error", err)
		os.Exit(1)
	}
}
