package audit

import "context"

// MultiRecorder fans each event out to every underlying recorder. The first
// error is returned after all recorders have been attempted.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder combines recorders into one.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

func (m *MultiRecorder) Record(ctx context.Context, event Event) error {
	var firstErr error
	for _, r := range m.recorders {
		if err := r.Record(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiRecorder) Close() error {
	var firstErr error
	for _, r := range m.recorders {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
