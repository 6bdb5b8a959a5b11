// Package async provides safe concurrent execution primitives for background tasks.
//
// SafeGo runs a function in a goroutine with panic recovery, an optional
// timeout, and structured error logging:
//
//	async.SafeGo(ctx, 0, "catalog watcher", logger, watcher.Run)
//
// Batch fans a slice out over a bounded worker set, converts panics to
// errors, and stops submitting when the context is cancelled:
//
//	errs := async.Batch(ctx, users, 4, "principal refresh", 10*time.Second, logger,
//		func(ctx context.Context, userID string) error {
//			return provider.Refresh(ctx, userID)
//		})
//
// Used for the periodic principal refresh sweep and long-lived watchers
// started from main.
package async
