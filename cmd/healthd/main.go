// Command healthd serves health checks declared in a YAML file.
//
//	healthd serve -c healthd.yaml     serve /health, /health/live, /health/ready
//	healthd check -c healthd.yaml     run the checks once and print the report
//	healthd probe --url URL           exit 0 if a running daemon reports healthy
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var unhealthy *unhealthyError
		if !errors.As(err, &unhealthy) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		stop()
		os.Exit(1)
	}
}
