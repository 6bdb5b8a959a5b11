package permsource

import (
	"context"

	"github.com/freebsdly/ops-console/pkg/access"
)

// Source supplies structured permission, role and route-authority data for a
// user. The console core is agnostic to where the data lives; HTTPSource
// talks to the backend permission service, SQLStore reads a local database.
type Source interface {
	// GetUserPermissions returns the user's fine-grained permissions.
	GetUserPermissions(ctx context.Context, userID string) ([]access.Permission, error)

	// GetUserRoles returns the user's role identifiers.
	GetUserRoles(ctx context.Context, userID string) ([]string, error)

	// CheckRoutePermission asks the remote authority whether the user may
	// activate the route. Its answer is authoritative for the caller.
	CheckRoutePermission(ctx context.Context, path, userID string) (access.Decision, error)

	// CheckBatchRoutePermissions checks several routes in one round trip,
	// returning decisions in input order.
	CheckBatchRoutePermissions(ctx context.Context, paths []string, userID string) ([]access.Decision, error)
}
