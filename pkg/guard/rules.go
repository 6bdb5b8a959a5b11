package guard

import (
	"sort"
	"strings"

	"github.com/freebsdly/ops-console/pkg/access"
	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

// Rule is a static per-route annotation: a path prefix with either a
// fine-grained requirement, a role list, or both.
type Rule struct {
	Prefix  string
	Require *access.Requirement
	Roles   []string
}

// RuleTable maps route paths to their static annotations. It is built once
// at startup; prefix matching replaces the long path-segment switch chains
// the annotation set would otherwise become.
type RuleTable struct {
	rules []Rule
}

// NewRuleTable builds a table from the given rules. Rules are kept sorted by
// descending prefix length so the longest matching prefix wins.
func NewRuleTable(rules []Rule) *RuleTable {
	sorted := make([]Rule, len(rules))
	for i, r := range rules {
		r.Prefix = taxonomy.NormalizePath(r.Prefix)
		sorted[i] = r
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &RuleTable{rules: sorted}
}

// Match returns the most specific rule covering path, or nil when the route
// carries no static annotation.
func (t *RuleTable) Match(path string) *Rule {
	p := taxonomy.NormalizePath(path)
	for i := range t.rules {
		r := &t.rules[i]
		if p == r.Prefix || strings.HasPrefix(p, r.Prefix+"/") {
			return r
		}
	}
	return nil
}
