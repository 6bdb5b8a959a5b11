package api

import (
	"context"
	"sync"

	"github.com/freebsdly/ops-console/pkg/naming"
	"github.com/freebsdly/ops-console/pkg/observability"
	"github.com/freebsdly/ops-console/pkg/tabs"
)

// TabSet pairs one user's tab manager with the navigation target the last
// operation produced. Operations are serialized per user so the recorded
// target always belongs to the call that just ran.
type TabSet struct {
	mu      sync.Mutex
	manager *tabs.Manager
	nav     string
}

// Do runs one tab operation and returns the navigation target it triggered,
// if any.
func (ts *TabSet) Do(fn func(m *tabs.Manager)) string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.nav = ""
	fn(ts.manager)
	return ts.nav
}

// TabSetRegistry lazily creates a tab manager per signed-in user and keeps
// it for the lifetime of the process (or until Drop on logout).
type TabSetRegistry struct {
	mu       sync.Mutex
	sets     map[string]*TabSet
	store    tabs.Store
	resolver naming.Resolver
	logger   *observability.Logger
	opts     tabs.Options
}

// NewTabSetRegistry creates a registry over the given snapshot store.
func NewTabSetRegistry(store tabs.Store, resolver naming.Resolver,
	logger *observability.Logger, opts tabs.Options) *TabSetRegistry {

	return &TabSetRegistry{
		sets:     make(map[string]*TabSet),
		store:    store,
		resolver: resolver,
		logger:   logger,
		opts:     opts,
	}
}

// Get returns the user's tab set, restoring the persisted snapshot on first
// use.
func (r *TabSetRegistry) Get(ctx context.Context, userID string) *TabSet {
	r.mu.Lock()
	if ts, ok := r.sets[userID]; ok {
		r.mu.Unlock()
		return ts
	}

	ts := &TabSet{}
	opts := r.opts
	opts.Navigate = func(path string) { ts.nav = path }
	ts.manager = tabs.NewManager(userID, r.store, r.resolver, r.logger, opts)

	// Hold the set's lock across the initial load so a concurrent request
	// for the same user waits for the restored snapshot.
	ts.mu.Lock()
	r.sets[userID] = ts
	r.mu.Unlock()

	ts.manager.LoadInitial(ctx)
	ts.mu.Unlock()
	return ts
}

// Drop forgets the user's in-memory tab set. The persisted snapshot is the
// store's concern; session logout clears it separately.
func (r *TabSetRegistry) Drop(userID string) {
	r.mu.Lock()
	delete(r.sets, userID)
	r.mu.Unlock()
}
