package permsource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/freebsdly/ops-console/pkg/access"
	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

// SQLStore implements Source over a SQL database holding user roles, user
// permissions and per-route requirements. It works with PostgreSQL (lib/pq)
// in production and SQLite in tests.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a store over an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// GetUserPermissions returns the user's permissions, actions grouped per
// resource.
func (s *SQLStore) GetUserPermissions(ctx context.Context, userID string) ([]access.Permission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resource, action
		FROM user_permissions
		WHERE user_id = $1
		ORDER BY resource, action
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user permissions: %w", err)
	}
	defer rows.Close()

	var (
		perms []access.Permission
		order []string
	)
	byResource := make(map[string]*access.Permission)
	for rows.Next() {
		var resource, action string
		if err := rows.Scan(&resource, &action); err != nil {
			return nil, fmt.Errorf("failed to scan permission row: %w", err)
		}
		p, ok := byResource[resource]
		if !ok {
			byResource[resource] = &access.Permission{Resource: resource, Actions: []string{action}}
			order = append(order, resource)
			continue
		}
		p.Actions = append(p.Actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read permission rows: %w", err)
	}
	for _, resource := range order {
		perms = append(perms, *byResource[resource])
	}
	return perms, nil
}

// GetUserRoles returns the user's role identifiers.
func (s *SQLStore) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// routeRule is one configured route requirement.
type routeRule struct {
	prefix   string
	resource string
	action   string
}

// CheckRoutePermission decides a single route; see
// CheckBatchRoutePermissions for the matching rules.
func (s *SQLStore) CheckRoutePermission(ctx context.Context, path, userID string) (access.Decision, error) {
	decisions, err := s.CheckBatchRoutePermissions(ctx, []string{path}, userID)
	if err != nil {
		return access.Deny(), err
	}
	return decisions[0], nil
}

// CheckBatchRoutePermissions decides each route by matching the longest
// configured path prefix and testing the user's permissions against its
// requirement. Routes with no configured rule are denied: the store is the
// remote authority of last resort and stays closed for unknown paths.
func (s *SQLStore) CheckBatchRoutePermissions(ctx context.Context, paths []string, userID string) ([]access.Decision, error) {
	rules, err := s.loadRouteRules(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := s.GetUserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	principal := access.NewPrincipal(userID, nil, perms)

	decisions := make([]access.Decision, len(paths))
	for i, path := range paths {
		rule := matchLongestPrefix(rules, taxonomy.NormalizePath(path))
		if rule == nil {
			decisions[i] = access.Deny()
			continue
		}
		req := access.Requirement{Resource: rule.resource, Action: rule.action}
		if access.HasPermission(principal, req.Resource, req.Action) {
			decisions[i] = access.Grant(&req)
		} else {
			decisions[i] = access.Deny()
		}
	}
	return decisions, nil
}

// loadRouteRules reads the configured route requirements.
func (s *SQLStore) loadRouteRules(ctx context.Context) ([]routeRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path_prefix, resource, action FROM route_requirements
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query route requirements: %w", err)
	}
	defer rows.Close()

	var rules []routeRule
	for rows.Next() {
		var r routeRule
		if err := rows.Scan(&r.prefix, &r.resource, &r.action); err != nil {
			return nil, fmt.Errorf("failed to scan route requirement: %w", err)
		}
		r.prefix = taxonomy.NormalizePath(r.prefix)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// matchLongestPrefix picks the rule with the longest prefix matching path at
// a segment boundary.
func matchLongestPrefix(rules []routeRule, path string) *routeRule {
	var best *routeRule
	for i := range rules {
		r := &rules[i]
		if path != r.prefix && !strings.HasPrefix(path, r.prefix+"/") {
			continue
		}
		if best == nil || len(r.prefix) > len(best.prefix) {
			best = r
		}
	}
	return best
}

// GrantPermission records a fine-grained permission for a user.
func (s *SQLStore) GrantPermission(ctx context.Context, userID, resource, action string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_permissions (user_id, resource, action) VALUES ($1, $2, $3)
	`, userID, resource, action)
	if err != nil {
		return fmt.Errorf("failed to grant permission: %w", err)
	}
	return nil
}

// AssignRole records a role for a user.
func (s *SQLStore) AssignRole(ctx context.Context, userID, role string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
	`, userID, role)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// AddRouteRequirement records a requirement for a route path prefix.
func (s *SQLStore) AddRouteRequirement(ctx context.Context, pathPrefix, resource, action string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO route_requirements (path_prefix, resource, action) VALUES ($1, $2, $3)
	`, taxonomy.NormalizePath(pathPrefix), resource, action)
	if err != nil {
		return fmt.Errorf("failed to add route requirement: %w", err)
	}
	return nil
}
