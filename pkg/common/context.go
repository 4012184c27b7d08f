package common

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func createGracefulCancellationContext() (context.Context, func(), chan os.Signal) {
	ctx, cancel := context.WithCancel(context.Background())

	// trap Ctrl+C and SIGTERM and cancel the context
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(c)
		cancel()
	}, c
}

// CreateGracefulCancellationContext returns a context that is cancelled on
// the first interrupt, and the func that releases the signal handler.
func CreateGracefulCancellationContext() (context.Context, func()) {
	ctx, cancel, _ := createGracefulCancellationContext()
	return ctx, cancel
}
