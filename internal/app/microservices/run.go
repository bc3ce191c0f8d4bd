package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Temutjin2k/skytrack/pkg/logger"
)

// waitForShutdown blocks until the HTTP server fails, a background worker
// stops the group, or SIGINT/SIGTERM arrives.
func waitForShutdown(ctx, groupCtx context.Context, errCh <-chan error, log logger.Logger) error {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	select {
	case errRun := <-errCh:
		return errRun
	case <-groupCtx.Done():
		log.Warn(ctx, "background worker stopped")
		return nil
	case sig := <-shutdownCh:
		log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}
