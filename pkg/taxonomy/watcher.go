package taxonomy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches catalog files for on-disk changes. The catalog itself is
// immutable for the life of the process; the watcher only surfaces that a
// restart is required to pick a changed catalog up.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(path string)
}

// NewWatcher watches the given catalog directory. onChange is invoked with
// the changed file path; callers typically log a restart-required warning.
func NewWatcher(dir string, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{watcher: fw, onChange: onChange}, nil
}

// Run processes watch events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".yaml" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.onChange(event.Name)
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
