// Package tabs manages a user's open workspace tabs: an ordered sequence
// with a single selected index, a permanent overview tab, and snapshot
// persistence across sessions. All operations on a Manager are serialized
// and persist synchronously, so concurrent callers always observe a
// consistent sequence.
package tabs
