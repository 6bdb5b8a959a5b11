// Package permsource supplies permission, role and route-authority data to
// the console core.
//
// Two implementations of Source ship with the console:
//
//   - HTTPSource talks to the backend permission service over HTTP,
//     unwrapping its unified {code, message, data} envelope.
//   - SQLStore reads a local SQL database (PostgreSQL in production, SQLite
//     in tests) and acts as a self-contained remote authority: routes with no
//     configured requirement are denied.
//
// Callers treat any source error as a denial; the fail-closed conversion
// happens in the route guard, not here.
package permsource
