package menu

import (
	"github.com/freebsdly/ops-console/pkg/access"
	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

// Resolve recursively filters a taxonomy against a principal snapshot and
// returns the menu tree the principal may see. The input tree is never
// mutated; kept nodes are fresh copies. Ordering is preserved.
//
// Rules, applied per node:
//   - leaf (no children): kept iff evaluation grants.
//   - group with surviving children: kept with only those children.
//   - group whose children all filtered out but which has a path of its own:
//     re-evaluated as a leaf and, if granted, kept as a directly navigable
//     leaf with no children.
//   - group with no surviving children and no path: dropped.
func Resolve(nodes []taxonomy.MenuNode, p *access.Principal) []taxonomy.MenuNode {
	var kept []taxonomy.MenuNode
	for i := range nodes {
		if n, ok := resolveNode(&nodes[i], p); ok {
			kept = append(kept, n)
		}
	}
	return kept
}

// resolveNode filters a single node, returning the kept copy and whether the
// node survived.
func resolveNode(n *taxonomy.MenuNode, p *access.Principal) (taxonomy.MenuNode, bool) {
	if len(n.Children) == 0 {
		if !access.Evaluate(p, n.Require, n.Roles).Granted {
			return taxonomy.MenuNode{}, false
		}
		return copyNode(n, nil), true
	}

	children := Resolve(n.Children, p)
	if len(children) > 0 {
		return copyNode(n, children), true
	}
	if n.Path != "" && access.Evaluate(p, n.Require, n.Roles).Granted {
		return copyNode(n, nil), true
	}
	return taxonomy.MenuNode{}, false
}

// copyNode builds a fresh node with the given children, leaving the source
// tree untouched.
func copyNode(n *taxonomy.MenuNode, children []taxonomy.MenuNode) taxonomy.MenuNode {
	out := taxonomy.MenuNode{
		ID:       n.ID,
		Label:    n.Label,
		Icon:     n.Icon,
		Path:     n.Path,
		Require:  n.Require,
		Children: children,
	}
	if len(n.Roles) > 0 {
		out.Roles = append([]string(nil), n.Roles...)
	}
	return out
}

// AccessibleRoutes flattens the resolved tree, collecting every reachable
// path in declaration order.
func AccessibleRoutes(nodes []taxonomy.MenuNode, p *access.Principal) []string {
	return taxonomy.Flatten(Resolve(nodes, p))
}

// FindByPath looks a path up in the unresolved taxonomy: exact first-declared
// match, depth-first. It is the guard's entry point into the taxonomy and
// deliberately ignores permissions; evaluation happens on the returned node.
func FindByPath(nodes []taxonomy.MenuNode, path string) *taxonomy.MenuNode {
	return taxonomy.FindByPath(nodes, path)
}
