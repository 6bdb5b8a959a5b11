// Package guard decides whether a navigation attempt may activate a route.
//
// Each attempt runs a small state machine:
//
//	START -> LOCAL_CHECK -> (GRANT | REMOTE_CHECK) -> (GRANT | DENY)
//
// LOCAL_CHECK consults, in order, the static per-route rule table and the
// menu taxonomy. A local grant is terminal. A local denial falls through to
// the remote authority, whose answer is final; remote errors and timeouts
// are converted to denials (fail-closed). Routes carrying only a role
// annotation are decided locally with no remote fallback.
//
// Routes absent from both the rule table and the taxonomy are granted: new
// or unconfigured routes default to accessible. The permissive default is
// deliberate and carried over from the platform's established behavior; the
// guard logs and counts such grants so the exposure stays observable.
//
// Every denial carries a redirect to the no-permission view with the
// attempted path as a returnUrl parameter.
package guard
