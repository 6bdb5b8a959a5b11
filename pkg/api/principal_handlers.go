package api

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/freebsdly/ops-console/pkg/audit"
	"github.com/freebsdly/ops-console/pkg/httputil"
	"github.com/freebsdly/ops-console/pkg/middleware"
)

// getPrincipal returns another user's permission snapshot. Mounted behind an
// iam:read permission check for support staff inspecting access problems.
func (s *Server) getPrincipal(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if !httputil.RequireNonEmpty(w, userID, "user_id") {
		return
	}

	p, err := s.principals.Get(r.Context(), userID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	roles := p.Roles()
	sort.Strings(roles)
	perms := p.Permissions()
	sort.Slice(perms, func(i, j int) bool { return perms[i].Resource < perms[j].Resource })

	httputil.WriteSuccess(w, PrincipalResponse{
		UserID:      userID,
		Roles:       roles,
		Permissions: perms,
	})
}

// invalidatePrincipal drops a user's cached snapshot so the next request
// reloads it from the permission source. Admin-role gated: this is how
// operators push a backend permission change without waiting for the
// refresh sweep.
func (s *Server) invalidatePrincipal(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if !httputil.RequireNonEmpty(w, userID, "user_id") {
		return
	}

	s.principals.Invalidate(userID)
	s.recordAudit(r.Context(), audit.Event{
		Type:   audit.EventSnapshotInvalidate,
		UserID: middleware.GetSession(r).UserID,
		Detail: userID,
	})

	httputil.WriteSuccess(w, InvalidateResponse{UserID: userID, Invalidated: true})
}
