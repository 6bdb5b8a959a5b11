package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/freebsdly/ops-console/pkg/contextkeys"
)

// FileRecorder appends events as JSON lines to a single log file.
type FileRecorder struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
	now     func() time.Time
}

// NewFileRecorder opens (or creates) the audit log at path for appending.
func NewFileRecorder(path string) (*FileRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &FileRecorder{
		file:    f,
		encoder: json.NewEncoder(f),
		now:     time.Now,
	}, nil
}

// Record writes the event as one JSON line. An empty Time is stamped and an
// empty RequestID is taken from the context.
func (r *FileRecorder) Record(ctx context.Context, event Event) error {
	if event.Time.IsZero() {
		event.Time = r.now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = contextkeys.GetRequestID(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return fmt.Errorf("audit log is closed")
	}
	if err := r.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Record fails afterwards.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
