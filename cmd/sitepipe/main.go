package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sitepipe/sitepipe/internal/cmd"
	"github.com/sitepipe/sitepipe/internal/exitcode"
)

func main() {
	// Create a context that listens for interrupt signals. The dev pipeline
	// runs until it is cancelled.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		code := exitcode.DetermineExitCode(err)
		if code != exitcode.Success {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		exitcode.Exit(code)
	}
}
