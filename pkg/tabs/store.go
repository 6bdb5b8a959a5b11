package tabs

import (
	"context"
	"errors"
)

// ErrSnapshotCorrupt marks a persisted snapshot that could not be decoded.
// The manager recovers by starting from the default single-tab state.
var ErrSnapshotCorrupt = errors.New("tab snapshot is corrupt")

// Store persists tab snapshots per user. Implementations back onto the local
// filesystem, Redis or S3; the manager treats all of them as a simple
// durable key-value surface.
type Store interface {
	// Load returns the user's snapshot, or nil when none is stored.
	// Undecodable data returns ErrSnapshotCorrupt (possibly wrapped).
	Load(ctx context.Context, userID string) (*Snapshot, error)

	// Save replaces the user's snapshot.
	Save(ctx context.Context, userID string, snap *Snapshot) error

	// Clear removes the user's snapshot.
	Clear(ctx context.Context, userID string) error
}
