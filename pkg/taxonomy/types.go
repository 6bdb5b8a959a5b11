package taxonomy

import (
	"github.com/freebsdly/ops-console/pkg/access"
)

// MenuNode is one entry (leaf or group) in the static navigation taxonomy.
//
// A node with children and no path is a pure grouping node; a leaf node
// carries a path. IDs are stable keys, unique within their module.
type MenuNode struct {
	ID       string              `json:"id" yaml:"id"`
	Label    string              `json:"label" yaml:"label"`
	Icon     string              `json:"icon,omitempty" yaml:"icon,omitempty"`
	Path     string              `json:"path,omitempty" yaml:"path,omitempty"`
	Require  *access.Requirement `json:"requirement,omitempty" yaml:"requirement,omitempty"`
	Roles    []string            `json:"required_roles,omitempty" yaml:"required_roles,omitempty"`
	Children []MenuNode          `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsGroup reports whether the node is a pure grouping node.
func (n *MenuNode) IsGroup() bool {
	return len(n.Children) > 0
}

// Module is one top-level module of the operations platform, owning a menu
// tree.
type Module struct {
	ID    string     `json:"id" yaml:"id"`
	Label string     `json:"label" yaml:"label"`
	Icon  string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Root  string     `json:"root" yaml:"root"` // module root path, e.g. /workbench
	Menus []MenuNode `json:"menus" yaml:"menus"`
}
