package permsource

import (
	"context"
	"time"

	"github.com/freebsdly/ops-console/pkg/access"
)

// ObserverFunc receives the outcome of each source call. operation is
// "get_permissions", "get_roles", "check_route" or "check_routes_batch".
type ObserverFunc func(ctx context.Context, operation string, duration time.Duration, err error)

// InstrumentedSource wraps a Source and reports every call to an observer.
type InstrumentedSource struct {
	source  Source
	observe ObserverFunc
}

// NewInstrumentedSource wraps source. A nil observe returns source unchanged.
func NewInstrumentedSource(source Source, observe ObserverFunc) Source {
	if observe == nil {
		return source
	}
	return &InstrumentedSource{source: source, observe: observe}
}

func (s *InstrumentedSource) GetUserPermissions(ctx context.Context, userID string) ([]access.Permission, error) {
	start := time.Now()
	perms, err := s.source.GetUserPermissions(ctx, userID)
	s.observe(ctx, "get_permissions", time.Since(start), err)
	return perms, err
}

func (s *InstrumentedSource) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	start := time.Now()
	roles, err := s.source.GetUserRoles(ctx, userID)
	s.observe(ctx, "get_roles", time.Since(start), err)
	return roles, err
}

func (s *InstrumentedSource) CheckRoutePermission(ctx context.Context, path, userID string) (access.Decision, error) {
	start := time.Now()
	decision, err := s.source.CheckRoutePermission(ctx, path, userID)
	s.observe(ctx, "check_route", time.Since(start), err)
	return decision, err
}

func (s *InstrumentedSource) CheckBatchRoutePermissions(ctx context.Context, paths []string, userID string) ([]access.Decision, error) {
	start := time.Now()
	decisions, err := s.source.CheckBatchRoutePermissions(ctx, paths, userID)
	s.observe(ctx, "check_routes_batch", time.Since(start), err)
	return decisions, err
}
