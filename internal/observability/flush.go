package observability

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/zap"
)

// FlushTelemetry flushes buffered log entries before process exit.
// Metrics are pull-based and need no flush. Sync errors from writing to a
// terminal or pipe (EINVAL, ENOTTY) are not reported.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("flush logs: %w", err)
	}
	if err := logger.Sync(); err != nil && !isIgnorableSyncError(err) {
		return fmt.Errorf("flush logs: %w", err)
	}
	return nil
}

func isIgnorableSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}
