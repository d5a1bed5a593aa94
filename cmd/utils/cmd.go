package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/inconshreveable/log15"
)

// InterruptContext returns a context cancelled on SIGINT or SIGTERM. A second
// signal exits the process.
func InterruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(c)
		select {
		case <-c:
		case <-ctx.Done():
			return
		}
		log15.Info("Got interrupt, shutting down...")
		cancel()
		<-c
		log15.Warn("Interrupted twice, exiting")
		os.Exit(1)
	}()
	return ctx, cancel
}
