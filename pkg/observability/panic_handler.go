package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic recovers a panic and logs it with the stack trace. Use it in a
// defer at the top of goroutines that must not take the process down:
//
//	defer observability.RecoverPanic(logger, "catalog watcher")
//
// The panic is swallowed after logging; a nil logger falls back to the
// process default.
func RecoverPanic(logger *Logger, scope string) {
	if r := recover(); r != nil {
		logPanic(logger, scope, r)
	}
}

// RecoverPanicWithCallback is RecoverPanic plus a cleanup hook that runs after
// the panic is logged. Useful for unblocking waiters or flipping error state
// when the panicking goroutine owns a channel or lock.
func RecoverPanicWithCallback(logger *Logger, scope string, callback func()) {
	if r := recover(); r != nil {
		logPanic(logger, scope, r)
		if callback != nil {
			callback()
		}
	}
}

// MustRecover converts a recovered panic value to an error, nil when no panic
// occurred. Pair it with a named error return:
//
//	defer func() { err = observability.MustRecover(recover()) }()
func MustRecover(r any) error {
	if r != nil {
		return fmt.Errorf("panic: %v", r)
	}
	return nil
}

func logPanic(logger *Logger, scope string, r any) {
	if logger == nil {
		logger = NewLogger(ErrorLevel, nil)
	}
	logger.WithFields(map[string]any{
		"panic": fmt.Sprintf("%v", r),
		"stack": string(debug.Stack()),
		"scope": scope,
	}).Error("Recovered from panic")
}
