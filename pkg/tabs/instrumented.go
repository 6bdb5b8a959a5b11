package tabs

import (
	"context"
	"time"
)

// StoreObserverFunc receives the outcome of each snapshot store call.
// operation is "load", "save" or "clear".
type StoreObserverFunc func(ctx context.Context, operation string, duration time.Duration, err error)

// InstrumentedStore wraps a Store and reports every call to an observer.
type InstrumentedStore struct {
	store   Store
	observe StoreObserverFunc
}

// NewInstrumentedStore wraps store. A nil observe returns store unchanged.
func NewInstrumentedStore(store Store, observe StoreObserverFunc) Store {
	if observe == nil {
		return store
	}
	return &InstrumentedStore{store: store, observe: observe}
}

func (s *InstrumentedStore) Load(ctx context.Context, userID string) (*Snapshot, error) {
	start := time.Now()
	snap, err := s.store.Load(ctx, userID)
	s.observe(ctx, "load", time.Since(start), err)
	return snap, err
}

func (s *InstrumentedStore) Save(ctx context.Context, userID string, snap *Snapshot) error {
	start := time.Now()
	err := s.store.Save(ctx, userID, snap)
	s.observe(ctx, "save", time.Since(start), err)
	return err
}

func (s *InstrumentedStore) Clear(ctx context.Context, userID string) error {
	start := time.Now()
	err := s.store.Clear(ctx, userID)
	s.observe(ctx, "clear", time.Since(start), err)
	return err
}
