package async

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/freebsdly/ops-console/pkg/observability"
)

func testLogger(buf *bytes.Buffer) *observability.Logger {
	return observability.NewLogger(observability.DebugLevel, buf)
}

func TestSafeGo_Success(t *testing.T) {
	done := make(chan struct{})

	SafeGo(context.Background(), time.Second, "test task", testLogger(&bytes.Buffer{}), func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SafeGo did not execute function")
	}
}

func TestSafeGo_LogsError(t *testing.T) {
	var buf bytes.Buffer
	done := make(chan struct{})

	SafeGo(context.Background(), time.Second, "flaky task", testLogger(&buf), func(ctx context.Context) error {
		defer close(done)
		return errors.New("boom")
	})

	<-done
	// The log write happens after fn returns; give the goroutine a beat.
	deadline := time.Now().Add(time.Second)
	for !strings.Contains(buf.String(), "boom") {
		if time.Now().After(deadline) {
			t.Fatalf("error not logged, got %q", buf.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !strings.Contains(buf.String(), "flaky task") {
		t.Errorf("log missing task name: %q", buf.String())
	}
}

func TestSafeGo_Timeout(t *testing.T) {
	done := make(chan error, 1)

	SafeGo(context.Background(), 20*time.Millisecond, "slow task", testLogger(&bytes.Buffer{}), func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return nil
	})

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("ctx error = %v, want deadline exceeded", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout was not enforced")
	}
}

func TestSafeGo_NoTimeoutInheritsContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	SafeGo(parent, 0, "long task", testLogger(&bytes.Buffer{}), func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			done <- ctx.Err()
		case <-time.After(time.Second):
			done <- errors.New("never cancelled")
		}
		return nil
	})

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("ctx error = %v, want canceled", err)
	}
}

func TestSafeGo_PanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	entered := make(chan struct{})

	SafeGo(context.Background(), time.Second, "panicky task", testLogger(&buf), func(ctx context.Context) error {
		close(entered)
		panic("kaboom")
	})

	<-entered
	deadline := time.Now().Add(time.Second)
	for !strings.Contains(buf.String(), "kaboom") {
		if time.Now().After(deadline) {
			t.Fatalf("panic not logged, got %q", buf.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBatch_AllSucceed(t *testing.T) {
	var count atomic.Int32
	items := []string{"a", "b", "c", "d", "e"}

	errs := Batch(context.Background(), items, 3, "test batch", time.Second, nil,
		func(ctx context.Context, item string) error {
			count.Add(1)
			return nil
		})

	if len(errs) != 0 {
		t.Errorf("errs = %v, want none", errs)
	}
	if got := count.Load(); got != int32(len(items)) {
		t.Errorf("executed %d items, want %d", got, len(items))
	}
}

func TestBatch_CollectsErrors(t *testing.T) {
	items := []int{1, 2, 3, 4}

	errs := Batch(context.Background(), items, 2, "test batch", time.Second, nil,
		func(ctx context.Context, item int) error {
			if item%2 == 0 {
				return errors.New("even item")
			}
			return nil
		})

	if len(errs) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(errs), errs)
	}
}

func TestBatch_PanicBecomesError(t *testing.T) {
	errs := Batch(context.Background(), []string{"ok", "bad"}, 1, "test batch", time.Second, nil,
		func(ctx context.Context, item string) error {
			if item == "bad" {
				panic("worker blew up")
			}
			return nil
		})

	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "worker blew up") {
		t.Errorf("error = %v, want panic message", errs[0])
	}
}

func TestBatch_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var count atomic.Int32
	items := []string{"a", "b", "c"}

	errs := Batch(ctx, items, 2, "test batch", time.Second, nil,
		func(ctx context.Context, item string) error {
			count.Add(1)
			return nil
		})

	if got := count.Load(); got != 0 {
		t.Errorf("executed %d items under a cancelled context, want 0", got)
	}
	if len(errs) != len(items) {
		t.Fatalf("got %d errors, want %d: %v", len(errs), len(items), errs)
	}
	for _, err := range errs {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want wrapped context.Canceled", err)
		}
	}
}

func TestBatch_EmptyItems(t *testing.T) {
	errs := Batch(context.Background(), nil, 4, "test batch", time.Second, nil,
		func(ctx context.Context, item string) error {
			t.Error("fn called for empty batch")
			return nil
		})
	if errs != nil {
		t.Errorf("errs = %v, want nil", errs)
	}
}

func TestBatch_MoreWorkersThanItems(t *testing.T) {
	var count atomic.Int32

	errs := Batch(context.Background(), []int{1}, 8, "test batch", time.Second, nil,
		func(ctx context.Context, item int) error {
			count.Add(1)
			return nil
		})

	if len(errs) != 0 {
		t.Errorf("errs = %v, want none", errs)
	}
	if count.Load() != 1 {
		t.Errorf("executed %d items, want 1", count.Load())
	}
}

func TestBatch_PerItemTimeout(t *testing.T) {
	errs := Batch(context.Background(), []string{"slow"}, 1, "test batch", 20*time.Millisecond, nil,
		func(ctx context.Context, item string) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
				return nil
			}
		})

	if len(errs) != 1 || !errors.Is(errs[0], context.DeadlineExceeded) {
		t.Errorf("errs = %v, want one deadline exceeded", errs)
	}
}
