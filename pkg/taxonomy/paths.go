package taxonomy

import "strings"

// NormalizePath strips any query string and fragment and enforces a leading
// slash. An empty path normalizes to "/".
func NormalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	// Collapse a trailing slash, the root path excepted.
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// FindByPath returns the first node whose path exactly matches the normalized
// input, searching depth-first across declared children in array order.
//
// When multiple nodes share overlapping prefixes this returns the first
// declared match, not the most specific one.
func FindByPath(nodes []MenuNode, path string) *MenuNode {
	want := NormalizePath(path)
	for i := range nodes {
		n := &nodes[i]
		if n.Path != "" && NormalizePath(n.Path) == want {
			return n
		}
		if found := FindByPath(n.Children, want); found != nil {
			return found
		}
	}
	return nil
}

// FindByPrefix returns the node whose path is the longest prefix of the
// normalized input at a segment boundary. The deepest covering entry wins so
// a fresh sub-route inherits its closest configured ancestor, not the
// enclosing group; ties go to the first declared node. It backs the
// module-root fallback when no exact entry exists.
func FindByPrefix(nodes []MenuNode, path string) *MenuNode {
	best, _ := findByPrefix(nodes, NormalizePath(path), nil, -1)
	return best
}

func findByPrefix(nodes []MenuNode, want string, best *MenuNode, bestLen int) (*MenuNode, int) {
	for i := range nodes {
		n := &nodes[i]
		if n.Path != "" {
			np := NormalizePath(n.Path)
			if (want == np || strings.HasPrefix(want, np+"/")) && len(np) > bestLen {
				best, bestLen = n, len(np)
			}
		}
		best, bestLen = findByPrefix(n.Children, want, best, bestLen)
	}
	return best, bestLen
}

// Flatten collects every path present in the tree, depth-first, preserving
// declaration order.
func Flatten(nodes []MenuNode) []string {
	var paths []string
	for i := range nodes {
		n := &nodes[i]
		if n.Path != "" {
			paths = append(paths, NormalizePath(n.Path))
		}
		paths = append(paths, Flatten(n.Children)...)
	}
	return paths
}

// Walk visits every node depth-first in declaration order. The visitor
// returning false stops the walk.
func Walk(nodes []MenuNode, fn func(n *MenuNode) bool) bool {
	for i := range nodes {
		if !fn(&nodes[i]) {
			return false
		}
		if !Walk(nodes[i].Children, fn) {
			return false
		}
	}
	return true
}
