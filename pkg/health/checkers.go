package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck returns a Check that fails when the goroutine count
// exceeds threshold. Wire it as a liveness check to catch leaks.
func GoroutineCountCheck(threshold int) Check {
	return func(_ context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}
