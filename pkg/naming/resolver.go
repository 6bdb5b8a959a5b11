// Package naming maps route paths to tab metadata: a stable key, a display
// label and an icon. The tab manager consults it whenever a freshly visited
// path has no exact taxonomy entry.
package naming

import (
	"strings"

	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

// TabMeta is the metadata a tab is created with.
type TabMeta struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

// Resolver resolves tab metadata for a route path.
type Resolver interface {
	ResolveTabMetadata(path string) TabMeta
}

// TaxonomyResolver derives tab metadata from the menu taxonomy, falling back
// to a deterministic synthetic key built from the path's last segment when no
// mapping exists.
type TaxonomyResolver struct {
	provider taxonomy.Provider
	overrides map[string]TabMeta
}

// NewTaxonomyResolver builds a resolver over the given taxonomy. Overrides
// map normalized paths to fixed metadata and win over taxonomy lookups.
func NewTaxonomyResolver(provider taxonomy.Provider, overrides map[string]TabMeta) *TaxonomyResolver {
	normalized := make(map[string]TabMeta, len(overrides))
	for p, meta := range overrides {
		normalized[taxonomy.NormalizePath(p)] = meta
	}
	return &TaxonomyResolver{provider: provider, overrides: normalized}
}

// ResolveTabMetadata resolves metadata for path. Lookup order: explicit
// override, exact taxonomy entry, taxonomy prefix entry, synthetic fallback.
func (r *TaxonomyResolver) ResolveTabMetadata(path string) TabMeta {
	p := taxonomy.NormalizePath(path)

	if meta, ok := r.overrides[p]; ok {
		return meta
	}

	all := r.provider.AllMenus()
	if n := taxonomy.FindByPath(all, p); n != nil {
		return TabMeta{Key: n.ID, Label: n.Label, Icon: n.Icon}
	}
	if n := taxonomy.FindByPrefix(all, p); n != nil {
		return TabMeta{Key: n.ID, Label: n.Label, Icon: n.Icon}
	}
	return Synthetic(p)
}

// Synthetic builds deterministic fallback metadata from the path's last
// segment.
func Synthetic(path string) TabMeta {
	p := taxonomy.NormalizePath(path)
	seg := p[strings.LastIndex(p, "/")+1:]
	if seg == "" {
		seg = "home"
	}
	label := strings.ReplaceAll(strings.ReplaceAll(seg, "-", " "), "_", " ")
	return TabMeta{Key: seg, Label: titleCase(label)}
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
