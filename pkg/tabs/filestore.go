package tabs

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists snapshots as one JSON file per user under a root
// directory. Writes go through a temp file and rename so a crash never
// leaves a half-written snapshot.
type FileStore struct {
	rootDir string
}

// NewFileStore creates a filesystem-backed snapshot store.
func NewFileStore(rootDir string) (*FileStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileStore{rootDir: rootDir}, nil
}

func (s *FileStore) path(userID string) string {
	return filepath.Join(s.rootDir, fileKey(userID)+".json")
}

// fileKey returns the filename stem for a user ID. The ID is attacker-chosen
// at login, so anything outside a plain charset is hex-encoded to keep the
// file inside the store root. The "%" marker cannot appear in a plain stem,
// so encoded and plain stems never collide.
func fileKey(userID string) string {
	for i := 0; i < len(userID); i++ {
		c := userID[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '-' || c == '_' || c == '.' {
			continue
		}
		return "%" + hex.EncodeToString([]byte(userID))
	}
	if userID == "" || userID == "." || userID == ".." {
		return "%" + hex.EncodeToString([]byte(userID))
	}
	return userID
}

// Load implements Store.Load.
func (s *FileStore) Load(_ context.Context, userID string) (*Snapshot, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	return &snap, nil
}

// Save implements Store.Save.
func (s *FileStore) Save(_ context.Context, userID string, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	target := s.path(userID)
	tmp, err := os.CreateTemp(s.rootDir, fileKey(userID)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}

// Clear implements Store.Clear.
func (s *FileStore) Clear(_ context.Context, userID string) error {
	if err := os.Remove(s.path(userID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}
	return nil
}
