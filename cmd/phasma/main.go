// Command phasma drives a headless PhantomJS engine: render pages,
// capture screenshots, generate PDFs and run one-shot scripts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gs := newGlobalState(ctx)
	if err := newRootCmd(gs).Execute(); err != nil {
		fmt.Fprintf(gs.stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
