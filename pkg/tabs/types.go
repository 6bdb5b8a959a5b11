package tabs

import (
	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

// Record is one open workspace tab. Key is a stable identity distinct from
// the path the tab currently shows.
type Record struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Path     string `json:"path"`
	Icon     string `json:"icon,omitempty"`
	Closable bool   `json:"closable"`
}

// Snapshot is the persisted tab state.
type Snapshot struct {
	Tabs     []Record `json:"tabs"`
	Selected int      `json:"selected"`
}

// Canonical default tab. Exactly one non-closable tab with this key exists
// at all times; close operations cannot remove it.
const (
	DefaultKey   = "overview-dashboard"
	DefaultLabel = "Overview"
	DefaultIcon  = "dashboard"
	DefaultPath  = taxonomy.OverviewPath
)

// legacyKeys are rewritten to DefaultKey when a persisted snapshot is
// reloaded. One-time migration for identifiers from earlier releases.
var legacyKeys = map[string]struct{}{
	"dashboard": {},
	"workbench": {},
}

// defaultRecord returns a fresh canonical default tab.
func defaultRecord() Record {
	return Record{
		Key:      DefaultKey,
		Label:    DefaultLabel,
		Path:     DefaultPath,
		Icon:     DefaultIcon,
		Closable: false,
	}
}
