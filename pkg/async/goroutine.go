package async

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/freebsdly/ops-console/pkg/observability"
)

// SafeGo runs fn in a goroutine with panic recovery and an optional timeout.
// A timeout of zero or less inherits parentCtx unchanged. Errors and panics
// are logged under the task name instead of crashing the process.
//
//	async.SafeGo(ctx, 0, "catalog watcher", logger, watcher.Run)
func SafeGo(parentCtx context.Context, timeout time.Duration, name string, logger *observability.Logger, fn func(context.Context) error) {
	go func() {
		defer observability.RecoverPanic(logger, name)

		ctx := parentCtx
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parentCtx, timeout)
			defer cancel()
		}

		if err := fn(ctx); err != nil && logger != nil {
			logger.WithError(err).WithField("task", name).Error("Background task failed")
		}
	}()
}

// Batch runs fn over items with a bounded number of workers and returns every
// error encountered, in no particular order. Each invocation gets its own
// timeout when one is set. A cancelled ctx stops submission: remaining items
// are not run and the context error is reported once per unsubmitted item.
// Panics inside fn are converted to errors rather than tearing the batch down.
func Batch[T any](ctx context.Context, items []T, workers int, name string, timeout time.Duration,
	logger *observability.Logger, fn func(context.Context, T) error) []error {

	if len(items) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	work := make(chan T)
	errCh := make(chan error, len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				if err := runOne(ctx, timeout, item, fn); err != nil {
					errCh <- err
				}
			}
		}()
	}

	submitted := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			break
		}
		work <- item
		submitted++
	}
	close(work)
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	for i := submitted; i < len(items); i++ {
		errs = append(errs, fmt.Errorf("%s aborted: %w", name, ctx.Err()))
	}
	if len(errs) > 0 && logger != nil {
		logger.WithFields(map[string]any{
			"task":   name,
			"failed": len(errs),
			"total":  len(items),
		}).Warn("Batch finished with errors")
	}
	return errs
}

func runOne[T any](ctx context.Context, timeout time.Duration, item T, fn func(context.Context, T) error) (err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if rerr := observability.MustRecover(recover()); rerr != nil {
			err = rerr
		}
	}()
	return fn(ctx, item)
}
