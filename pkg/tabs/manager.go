package tabs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/freebsdly/ops-console/pkg/naming"
	"github.com/freebsdly/ops-console/pkg/observability"
	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

// NavigateFunc is invoked when an operation moves the user to another route.
// The routing layer supplies it; tests capture it.
type NavigateFunc func(path string)

// Options configures a Manager.
type Options struct {
	// LoginPath and RootPath are not tab-worthy; navigations to them are
	// ignored. Defaults: /login and /.
	LoginPath string
	RootPath  string

	// Navigate is called on operations that change the active route.
	// A nil func makes those navigations no-ops.
	Navigate NavigateFunc

	// Now supplies timestamps for synthesized unique keys. Defaults to
	// time.Now; tests inject a fixed clock.
	Now func() time.Time
}

// Manager owns one user's ordered tab sequence and selection for the
// lifetime of a session. Operations are serialized; every mutation persists
// the full snapshot before returning.
type Manager struct {
	mu sync.Mutex

	userID   string
	store    Store
	resolver naming.Resolver
	navigate NavigateFunc
	logger   *observability.Logger
	now      func() time.Time

	loginPath string
	rootPath  string

	tabs     []Record
	selected int
	current  string // last navigated path
}

// NewManager creates a manager for one user. Call LoadInitial before use.
func NewManager(userID string, store Store, resolver naming.Resolver,
	logger *observability.Logger, opts Options) *Manager {

	m := &Manager{
		userID:    userID,
		store:     store,
		resolver:  resolver,
		logger:    logger,
		navigate:  opts.Navigate,
		now:       opts.Now,
		loginPath: opts.LoginPath,
		rootPath:  opts.RootPath,
		tabs:      []Record{defaultRecord()},
	}
	if m.navigate == nil {
		m.navigate = func(string) {}
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.loginPath == "" {
		m.loginPath = taxonomy.LoginPath
	}
	if m.rootPath == "" {
		m.rootPath = taxonomy.RootPath
	}
	return m
}

// LoadInitial reconstructs tab state from the persisted snapshot, applying
// the legacy-key migration, key deduplication and the default-tab guarantee.
// A missing or corrupt snapshot yields the single default tab.
func (m *Manager) LoadInitial(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.store.Load(ctx, m.userID)
	if err != nil {
		if m.logger != nil {
			m.logger.WithError(err).WithField("user_id", m.userID).
				Warn("failed to load tab snapshot, starting fresh")
		}
		snap = nil
	}
	if snap == nil {
		m.tabs = []Record{defaultRecord()}
		m.selected = 0
		m.persist(ctx)
		return
	}

	m.tabs = sanitize(snap.Tabs)
	m.selected = snap.Selected
	if m.selected < 0 || m.selected >= len(m.tabs) {
		m.selected = 0
	}
	m.persist(ctx)
}

// sanitize applies, in order: legacy-key migration, dedup by key (first
// occurrence wins, stable order), default-tab presence and uniqueness.
func sanitize(in []Record) []Record {
	migrated := make([]Record, 0, len(in))
	for _, t := range in {
		if _, legacy := legacyKeys[t.Key]; legacy {
			t = defaultRecord()
		} else if t.Key == DefaultKey {
			t = canonicalDefault(t)
		}
		migrated = append(migrated, t)
	}

	seen := make(map[string]struct{}, len(migrated))
	out := migrated[:0]
	for _, t := range migrated {
		if _, dup := seen[t.Key]; dup {
			continue
		}
		seen[t.Key] = struct{}{}
		out = append(out, t)
	}

	if _, ok := seen[DefaultKey]; !ok {
		out = append([]Record{defaultRecord()}, out...)
	}
	return out
}

// canonicalDefault restores the invariant attributes of a persisted default
// tab while keeping the location the user relocated it to.
func canonicalDefault(t Record) Record {
	d := defaultRecord()
	if t.Path != "" {
		d.Path = t.Path
	}
	if t.Label != "" {
		d.Label = t.Label
	}
	if t.Icon != "" {
		d.Icon = t.Icon
	}
	return d
}

// OnNavigate records a completed navigation: it activates the tab showing
// the path, or opens one.
func (m *Manager) OnNavigate(ctx context.Context, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := taxonomy.NormalizePath(path)
	if p == m.loginPath || p == m.rootPath {
		return
	}
	m.current = p

	if len(m.tabs) == 0 {
		m.tabs = []Record{defaultRecord()}
		m.selected = 0
	}

	// An exact path match activates in place.
	if i := m.indexOfPath(p); i >= 0 {
		m.selected = i
		m.persist(ctx)
		return
	}

	meta := m.resolver.ResolveTabMetadata(p)
	if i := m.indexOfKey(meta.Key); i >= 0 {
		if meta.Key == DefaultKey {
			// The default tab is a singleton that may point anywhere.
			m.tabs[i].Path = p
			m.selected = i
			m.persist(ctx)
			return
		}
		// Never overwrite a non-default tab's identity; fork the key.
		meta.Key = m.uniqueKey(meta.Key)
	}

	m.tabs = append(m.tabs, Record{
		Key:      meta.Key,
		Label:    meta.Label,
		Path:     p,
		Icon:     meta.Icon,
		Closable: true,
	})
	m.selected = len(m.tabs) - 1
	m.persist(ctx)
}

// Close removes the tab at index. Closing a non-closable tab is a no-op.
func (m *Manager) Close(ctx context.Context, index int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.tabs) || !m.tabs[index].Closable {
		return
	}
	m.tabs = append(m.tabs[:index], m.tabs[index+1:]...)

	switch {
	case index < m.selected:
		m.selected--
	case index == m.selected:
		if len(m.tabs) > 0 {
			if m.selected >= len(m.tabs) {
				m.selected = len(m.tabs) - 1
			}
			m.goTo(m.tabs[m.selected].Path)
		} else {
			m.selected = 0
			m.goTo(DefaultPath)
		}
	}
	m.persist(ctx)
}

// CloseOthers retains the tab at index plus every non-closable tab,
// deduplicated by key, then selects and navigates to the retained target.
func (m *Manager) CloseOthers(ctx context.Context, index int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.tabs) {
		return
	}
	target := m.tabs[index]

	seen := make(map[string]struct{}, len(m.tabs))
	var kept []Record
	for i, t := range m.tabs {
		if i != index && t.Closable {
			continue
		}
		if _, dup := seen[t.Key]; dup {
			continue
		}
		seen[t.Key] = struct{}{}
		kept = append(kept, t)
	}
	m.tabs = kept

	m.selected = 0
	for i, t := range m.tabs {
		if t.Key == target.Key {
			m.selected = i
			break
		}
	}
	m.goTo(m.tabs[m.selected].Path)
	m.persist(ctx)
}

// CloseAll retains only non-closable tabs, selects the default tab and
// navigates to the default path unless already there. Pinned tabs survive in
// place but the default tab is the one that ends up active.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []Record
	for _, t := range m.tabs {
		if !t.Closable {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		kept = []Record{defaultRecord()}
	}
	m.tabs = kept

	m.selected = 0
	for i, t := range m.tabs {
		if t.Key == DefaultKey {
			m.selected = i
			break
		}
	}
	if m.current != DefaultPath {
		m.goTo(DefaultPath)
	}
	m.persist(ctx)
}

// Duplicate clones the closable tab at index under a fresh unique key and
// selects the clone.
func (m *Manager) Duplicate(ctx context.Context, index int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.tabs) || !m.tabs[index].Closable {
		return
	}
	clone := m.tabs[index]
	clone.Key = m.uniqueKey(clone.Key)
	m.tabs = append(m.tabs, clone)
	m.selected = len(m.tabs) - 1
	m.goTo(clone.Path)
	m.persist(ctx)
}

// Pin makes the closable tab at index permanent. Position and key are
// unchanged; a pinned tab is distinct from the canonical default tab.
func (m *Manager) Pin(ctx context.Context, index int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.tabs) || !m.tabs[index].Closable {
		return
	}
	m.tabs[index].Closable = false
	m.persist(ctx)
}

// CleanupDuplicates removes duplicate keys, then duplicate paths (first
// occurrence wins in both passes) and reports how many tabs were removed.
// Selection follows the surviving tab with the previously selected key.
func (m *Manager) CleanupDuplicates(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var selectedKey string
	if m.selected >= 0 && m.selected < len(m.tabs) {
		selectedKey = m.tabs[m.selected].Key
	}
	before := len(m.tabs)

	seenKey := make(map[string]struct{}, before)
	var pass []Record
	for _, t := range m.tabs {
		if _, dup := seenKey[t.Key]; dup {
			continue
		}
		seenKey[t.Key] = struct{}{}
		pass = append(pass, t)
	}

	seenPath := make(map[string]struct{}, len(pass))
	var out []Record
	for _, t := range pass {
		if _, dup := seenPath[t.Path]; dup {
			continue
		}
		seenPath[t.Path] = struct{}{}
		out = append(out, t)
	}
	m.tabs = out

	m.selected = 0
	for i, t := range m.tabs {
		if t.Key == selectedKey {
			m.selected = i
			break
		}
	}
	m.persist(ctx)
	return before - len(m.tabs)
}

// Tabs returns a copy of the ordered tab sequence.
func (m *Manager) Tabs() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.tabs...)
}

// Selected returns the selected index.
func (m *Manager) Selected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// Visible returns the first limit tabs. A non-positive limit shows all.
func (m *Manager) Visible(limit int) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit >= len(m.tabs) {
		return append([]Record(nil), m.tabs...)
	}
	return append([]Record(nil), m.tabs[:limit]...)
}

// Overflow returns the tabs beyond the visible limit. Overflow is a
// presentation projection; the tabs remain part of the single authoritative
// sequence.
func (m *Manager) Overflow(limit int) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit >= len(m.tabs) {
		return nil
	}
	return append([]Record(nil), m.tabs[limit:]...)
}

// Clear wipes state and persistence; called on logout.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tabs = []Record{defaultRecord()}
	m.selected = 0
	m.current = ""
	if err := m.store.Clear(ctx, m.userID); err != nil && m.logger != nil {
		m.logger.WithError(err).WithField("user_id", m.userID).
			Warn("failed to clear tab snapshot")
	}
}

// indexOfPath finds a tab by exact path.
func (m *Manager) indexOfPath(path string) int {
	for i, t := range m.tabs {
		if t.Path == path {
			return i
		}
	}
	return -1
}

// indexOfKey finds a tab by key.
func (m *Manager) indexOfKey(key string) int {
	for i, t := range m.tabs {
		if t.Key == key {
			return i
		}
	}
	return -1
}

// uniqueKey suffixes base with a timestamp, bumping until the key is unused.
func (m *Manager) uniqueKey(base string) string {
	ts := m.now().UnixMilli()
	for {
		key := fmt.Sprintf("%s-%d", base, ts)
		if m.indexOfKey(key) < 0 {
			return key
		}
		ts++
	}
}

// goTo invokes the navigation callback and tracks the current path.
func (m *Manager) goTo(path string) {
	m.current = path
	m.navigate(path)
}

// persist writes the full snapshot synchronously. Persistence failures are
// logged, never surfaced to the user.
func (m *Manager) persist(ctx context.Context) {
	snap := &Snapshot{
		Tabs:     append([]Record(nil), m.tabs...),
		Selected: m.selected,
	}
	if err := m.store.Save(ctx, m.userID, snap); err != nil && m.logger != nil {
		m.logger.WithError(err).WithField("user_id", m.userID).
			Warn("failed to persist tab snapshot")
	}
}
