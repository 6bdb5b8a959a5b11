package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/freebsdly/ops-console/pkg/access"
	"github.com/freebsdly/ops-console/pkg/contextkeys"
	"github.com/freebsdly/ops-console/pkg/principal"
	"github.com/freebsdly/ops-console/pkg/session"
)

// SessionMiddleware resolves the session token on incoming requests and
// attaches the session and the caller's permission snapshot to the request
// context.
type SessionMiddleware struct {
	sessions   *session.Manager
	principals principal.Provider
	optional   bool // If true, allow requests without a session
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(sessions *session.Manager, principals principal.Provider, optional bool) *SessionMiddleware {
	return &SessionMiddleware{
		sessions:   sessions,
		principals: principals,
		optional:   optional,
	}
}

// Handler wraps an HTTP handler with session resolution
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			unauthorizedResponse(w, "missing session token")
			return
		}

		sess, err := m.sessions.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				unauthorizedResponse(w, "invalid or expired session")
				return
			}
			internalErrorResponse(w, "session resolution failed")
			return
		}

		p, err := m.principals.Get(r.Context(), sess.UserID)
		if err != nil {
			internalErrorResponse(w, "failed to load permissions")
			return
		}

		ctx := contextkeys.WithSession(r.Context(), sess)
		ctx = contextkeys.WithPrincipal(ctx, p)
		ctx = contextkeys.WithUserID(ctx, sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractToken pulls the session token from the Authorization header or,
// as a fallback for browser clients, the session cookie.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	cookie, err := r.Cookie("console_session")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetSession extracts the resolved session from a request
func GetSession(r *http.Request) *session.Session {
	v := r.Context().Value(contextkeys.SessionKey)
	if v == nil {
		return nil
	}
	sess, ok := v.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// GetPrincipal extracts the caller's permission snapshot from a request
func GetPrincipal(r *http.Request) *access.Principal {
	v := r.Context().Value(contextkeys.PrincipalKey)
	if v == nil {
		return nil
	}
	p, ok := v.(*access.Principal)
	if !ok {
		return nil
	}
	return p
}

// RequirePermission creates middleware that checks a permission requirement
// against the caller's snapshot. The snapshot must already be attached by
// SessionMiddleware.
func RequirePermission(requirement access.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r)
			if p == nil {
				forbiddenResponse(w, "authentication required")
				return
			}

			if !access.HasPermission(p, requirement.Resource, requirement.Action) {
				forbiddenResponse(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole creates middleware that checks the caller holds at least
// one of the given roles.
func RequireAnyRole(roleIDs ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r)
			if p == nil {
				forbiddenResponse(w, "authentication required")
				return
			}

			if !access.HasAnyRole(p, roleIDs) {
				forbiddenResponse(w, "insufficient role permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

func forbiddenResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

func internalErrorResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
