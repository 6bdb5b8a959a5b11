// Package taxonomy holds the static, read-only catalog of modules and
// hierarchical menu items the console navigates.
//
// The catalog is constructed once at process start, either from the built-in
// defaults or from YAML catalog files, and is immutable thereafter: changing
// it requires a redeploy, not runtime mutation. A Watcher can surface on-disk
// catalog edits so operators know a restart is pending.
//
// Path lookups (FindByPath, FindByPrefix) search depth-first across declared
// children in array order and return the first match.
package taxonomy
