package api

import (
	"net/http"
	"time"

	"github.com/freebsdly/ops-console/pkg/audit"
	"github.com/freebsdly/ops-console/pkg/httputil"
	"github.com/freebsdly/ops-console/pkg/middleware"
)

// login authenticates a user directly by ID and returns a session token.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.UserID, "user_id") {
		return
	}

	sess, token, err := s.sessions.Login(r.Context(), req.UserID)
	if err != nil {
		s.recordAudit(r.Context(), audit.Event{
			Type:   audit.EventSessionLoginFailed,
			UserID: req.UserID,
			Detail: err.Error(),
		})
		httputil.WriteInternalError(w, err)
		return
	}
	s.recordAudit(r.Context(), audit.Event{
		Type:   audit.EventSessionLogin,
		UserID: sess.UserID,
	})

	// Warm the permission snapshot so the first menu request is served
	// from cache.
	if _, err := s.principals.Get(r.Context(), sess.UserID); err != nil {
		s.logger.WithError(err).WithField("user_id", sess.UserID).
			Warn("failed to warm permission snapshot on login")
	}

	s.updateSessionGauge()
	httputil.WriteSuccess(w, LoginResponse{
		Token:     token,
		UserID:    sess.UserID,
		ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
	})
}

// currentSession describes the caller's session and roles.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	p := middleware.GetPrincipal(r)

	roles := p.Roles()
	if roles == nil {
		roles = []string{}
	}

	httputil.WriteSuccess(w, SessionResponse{
		UserID:    sess.UserID,
		Roles:     roles,
		CreatedAt: sess.CreatedAt.Format(time.RFC3339),
		ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
	})
}

// logout ends the session, drops the cached principal and clears the
// persisted tab state.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	token := middleware.ExtractToken(r)

	if err := s.sessions.Logout(r.Context(), token); err != nil {
		s.logger.WithError(err).WithField("user_id", sess.UserID).
			Warn("logout cleanup incomplete")
	}
	s.tabSets.Drop(sess.UserID)
	s.recordAudit(r.Context(), audit.Event{
		Type:   audit.EventSessionLogout,
		UserID: sess.UserID,
	})

	s.updateSessionGauge()
	httputil.WriteNoContent(w)
}

// oidcURL returns the identity provider's authorization URL.
func (s *Server) oidcURL(w http.ResponseWriter, r *http.Request) {
	state := httputil.ParseQueryString(r, "state", "")
	if !httputil.RequireNonEmpty(w, state, "state") {
		return
	}

	httputil.WriteSuccess(w, OIDCURLResponse{URL: s.oidc.AuthCodeURL(state)})
}

// oidcCallback exchanges an authorization code for a console session.
func (s *Server) oidcCallback(w http.ResponseWriter, r *http.Request) {
	var req OIDCCallbackRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Code, "code") {
		return
	}

	identity, err := s.oidc.Exchange(r.Context(), req.Code)
	if err != nil {
		s.recordAudit(r.Context(), audit.Event{
			Type:   audit.EventSessionLoginFailed,
			Detail: "oidc code exchange failed",
		})
		httputil.WriteUnauthorized(w, "identity verification failed")
		return
	}

	sess, token, err := s.sessions.Login(r.Context(), identity.Subject)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	s.recordAudit(r.Context(), audit.Event{
		Type:   audit.EventSessionLogin,
		UserID: sess.UserID,
		Detail: "oidc",
	})

	s.updateSessionGauge()
	httputil.WriteSuccess(w, LoginResponse{
		Token:     token,
		UserID:    sess.UserID,
		ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) updateSessionGauge() {
	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(s.sessions.ActiveCount()))
	}
}
