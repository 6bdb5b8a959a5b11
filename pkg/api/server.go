package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/freebsdly/ops-console/pkg/access"
	"github.com/freebsdly/ops-console/pkg/audit"
	"github.com/freebsdly/ops-console/pkg/guard"
	"github.com/freebsdly/ops-console/pkg/httputil"
	"github.com/freebsdly/ops-console/pkg/middleware"
	"github.com/freebsdly/ops-console/pkg/observability"
	"github.com/freebsdly/ops-console/pkg/principal"
	"github.com/freebsdly/ops-console/pkg/session"
	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

// DefaultVisibleTabs bounds the tab strip when no limit is configured.
const DefaultVisibleTabs = 8

// Dependencies carries everything the API server needs. OIDC is optional;
// when nil the direct login endpoint is the only way in.
type Dependencies struct {
	Provider   taxonomy.Provider
	Guard      *guard.Guard
	Sessions   *session.Manager
	Principals principal.Provider
	TabSets    *TabSetRegistry
	OIDC       *session.OIDCVerifier
	Logger     *observability.Logger
	Metrics    *observability.Metrics

	// Audit records logins, logouts and denied route access. Nil disables
	// auditing.
	Audit audit.Recorder

	// RateLimit wraps every endpoint when set; sessionless requests are
	// keyed by client IP, the rest per user.
	RateLimit func(http.Handler) http.Handler

	// VisibleTabs is the default tab strip width for GET /api/v1/tabs.
	VisibleTabs int

	// AdminRoles may invalidate cached principals. Empty defaults to
	// "ops:admin".
	AdminRoles []string
}

// Server routes console API requests.
type Server struct {
	router      *mux.Router
	provider    taxonomy.Provider
	guard       *guard.Guard
	sessions    *session.Manager
	principals  principal.Provider
	tabSets     *TabSetRegistry
	oidc        *session.OIDCVerifier
	logger      *observability.Logger
	metrics     *observability.Metrics
	audit       audit.Recorder
	rateLimit   func(http.Handler) http.Handler
	visibleTabs int
	adminRoles  []string
}

// NewServer creates the API server and wires its routes.
func NewServer(deps Dependencies) *Server {
	visible := deps.VisibleTabs
	if visible <= 0 {
		visible = DefaultVisibleTabs
	}
	recorder := deps.Audit
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	adminRoles := deps.AdminRoles
	if len(adminRoles) == 0 {
		adminRoles = []string{"ops:admin"}
	}

	s := &Server{
		router:      mux.NewRouter(),
		provider:    deps.Provider,
		guard:       deps.Guard,
		sessions:    deps.Sessions,
		principals:  deps.Principals,
		tabSets:     deps.TabSets,
		oidc:        deps.OIDC,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		audit:       recorder,
		rateLimit:   deps.RateLimit,
		visibleTabs: visible,
		adminRoles:  adminRoles,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.LoggingMiddleware(s.logger))
	s.router.Use(httputil.RecoveryMiddleware(s.logger))
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}

	// Session entry points do not require an existing session. They are
	// rate limited by client IP since no user is attached yet.
	public := func(h http.HandlerFunc) http.Handler {
		if s.rateLimit == nil {
			return h
		}
		return s.rateLimit(h)
	}
	s.router.Handle("/api/v1/session/login", public(s.login)).Methods("POST")
	if s.oidc != nil {
		s.router.Handle("/api/v1/session/oidc/url", public(s.oidcURL)).Methods("GET")
		s.router.Handle("/api/v1/session/oidc/callback", public(s.oidcCallback)).Methods("POST")
	}

	sessionMW := middleware.NewSessionMiddleware(s.sessions, s.principals, false)

	protected := s.router.PathPrefix("/api/v1").Subrouter()
	protected.Use(sessionMW.Handler)
	if s.rateLimit != nil {
		protected.Use(s.rateLimit)
	}

	protected.HandleFunc("/session", s.currentSession).Methods("GET")
	protected.HandleFunc("/session/logout", s.logout).Methods("POST")

	protected.HandleFunc("/menus", s.listMenus).Methods("GET")
	protected.HandleFunc("/menus/routes", s.listRoutes).Methods("GET")

	protected.HandleFunc("/access/route", s.checkRoute).Methods("GET")
	protected.HandleFunc("/access/routes:batch", s.checkRoutesBatch).Methods("POST")

	protected.HandleFunc("/tabs", s.getTabs).Methods("GET")
	protected.HandleFunc("/tabs/navigate", s.navigateTab).Methods("POST")
	protected.HandleFunc("/tabs/close-all", s.closeAllTabs).Methods("POST")
	protected.HandleFunc("/tabs/cleanup", s.cleanupTabs).Methods("POST")
	protected.HandleFunc("/tabs/{index}/close", s.closeTab).Methods("POST")
	protected.HandleFunc("/tabs/{index}/close-others", s.closeOtherTabs).Methods("POST")
	protected.HandleFunc("/tabs/{index}/duplicate", s.duplicateTab).Methods("POST")
	protected.HandleFunc("/tabs/{index}/pin", s.pinTab).Methods("POST")

	// Admin surface: snapshot inspection needs the iam:read permission,
	// cache invalidation needs an admin role.
	protected.Handle("/principals/{user_id}",
		middleware.RequirePermission(access.Requirement{Resource: "iam", Action: "read"})(
			http.HandlerFunc(s.getPrincipal))).Methods("GET")
	protected.Handle("/principals/{user_id}/invalidate",
		middleware.RequireAnyRole(s.adminRoles...)(
			http.HandlerFunc(s.invalidatePrincipal))).Methods("POST")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// recordAudit writes an audit event; a failing recorder must not fail the
// request, so errors are only logged.
func (s *Server) recordAudit(ctx context.Context, event audit.Event) {
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event_type", string(event.Type)).
			Warn("failed to record audit event")
	}
}
