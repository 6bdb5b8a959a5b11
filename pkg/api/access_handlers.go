package api

import (
	"net/http"

	"github.com/freebsdly/ops-console/pkg/audit"
	"github.com/freebsdly/ops-console/pkg/guard"
	"github.com/freebsdly/ops-console/pkg/httputil"
	"github.com/freebsdly/ops-console/pkg/middleware"
)

// maxBatchRoutes caps one batch verdict request.
const maxBatchRoutes = 100

// checkRoute returns the guard's verdict for a single route path.
func (s *Server) checkRoute(w http.ResponseWriter, r *http.Request) {
	path := httputil.ParseQueryString(r, "path", "")
	if !httputil.RequireNonEmpty(w, path, "path") {
		return
	}

	p := middleware.GetPrincipal(r)
	decision := s.guard.CanActivate(r.Context(), p, path)
	if !decision.Granted {
		s.recordAudit(r.Context(), audit.Event{
			Type:   audit.EventAccessDenied,
			UserID: middleware.GetSession(r).UserID,
			Path:   path,
			Detail: decision.Source,
		})
	}

	httputil.WriteSuccess(w, RouteAccessResponse{
		Path:     path,
		Decision: decision,
	})
}

// checkRoutesBatch returns verdicts for several routes at once.
func (s *Server) checkRoutesBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRouteRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if len(req.Paths) == 0 {
		httputil.WriteValidationError(w, "paths is required")
		return
	}
	if len(req.Paths) > maxBatchRoutes {
		httputil.WriteValidationError(w, "too many paths in one batch")
		return
	}

	p := middleware.GetPrincipal(r)
	results := make(map[string]guard.Decision, len(req.Paths))
	for _, path := range req.Paths {
		results[path] = s.guard.CanActivate(r.Context(), p, path)
	}

	httputil.WriteSuccess(w, BatchRouteResponse{Results: results})
}
