// Package menu resolves the static navigation taxonomy against a principal
// snapshot, producing the pruned menu tree and the flattened index of routes
// the principal may reach.
//
// Resolution is a pure recursive filter: the input tree is never spliced in
// place, kept nodes are fresh copies, and filtering an already-filtered tree
// with the same principal changes nothing.
package menu
