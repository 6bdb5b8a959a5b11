// Package middleware provides HTTP middleware for session resolution,
// permission checks, and rate limiting.
//
// # Overview
//
// This package implements request processing middleware for the console API:
// session token resolution, permission snapshot loading, route-level
// permission checks, and rate limiting (in-memory and Redis-backed).
//
// # Middleware Components
//
// SessionMiddleware: Token-based session resolution
//
//	m := middleware.NewSessionMiddleware(sessions, principals, false)
//	router.Use(m.Handler)
//	// Extracts Bearer token or session cookie, resolves the session,
//	// loads the caller's permission snapshot, and attaches both to context
//
// RequirePermission / RequireAnyRole: Declarative route protection
//
//	router.Handle("/api/v1/admin", middleware.RequirePermission(
//		access.Requirement{Resource: "iam", Action: "write"})(handler))
//
// RateLimitMiddleware: In-memory rate limiting
//
//	router.Use(middleware.NewRateLimitMiddleware().Handler)
//	// Per-user buckets for signed-in callers, per-IP for anonymous
//
// DistributedRateLimitMiddleware: Redis-backed rate limiting
//
//	router.Use(middleware.NewDistributedRateLimitMiddleware(redisClient).Handler)
//	// Shares limits across console instances; fails open on Redis errors
//
// # Rate Limiting
//
// Default (Anonymous): 100 req/min, 10 burst
// Per-User: 1000 req/min, 50 burst
//
// # Related Packages
//
//   - pkg/session: Session management
//   - pkg/principal: Permission snapshot cache
//   - pkg/access: Permission evaluation
package middleware
