// Package access implements the permission evaluator at the core of the
// console: pure functions that decide, given a principal snapshot (roles plus
// fine-grained permissions) and a requirement, whether access is granted.
//
// # Principal Snapshots
//
// A Principal is built once from the permission source and never mutated.
// Refreshing permissions produces a new snapshot that replaces the old one
// wholesale, so no reader ever observes a partially updated permission set.
//
//	p := access.NewPrincipal("u-1", []string{"ops:admin"}, []access.Permission{
//		{Resource: "configuration", Actions: []string{"read", "update"}},
//	})
//	access.HasPermission(p, "configuration", "read") // true
//
// # Evaluation Semantics
//
// Evaluate combines an optional role list with an optional fine-grained
// requirement. Within the role list the semantics are OR (any listed role
// suffices); between the role list and the requirement the semantics are AND
// (both must pass when both are present). Entries carrying neither are open.
//
// The evaluator never returns an error: missing data is a denial.
package access
