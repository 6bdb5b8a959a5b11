package api

import (
	"net/http"
	"time"

	"github.com/freebsdly/ops-console/pkg/httputil"
	"github.com/freebsdly/ops-console/pkg/menu"
	"github.com/freebsdly/ops-console/pkg/middleware"
)

// listMenus returns the caller's resolved menu tree, one entry per module
// that still has at least one visible item.
func (s *Server) listMenus(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)

	var out []MenuResponse
	for _, mod := range s.provider.Modules() {
		start := time.Now()
		resolved := menu.Resolve(mod.Menus, p)
		if s.metrics != nil {
			s.metrics.MenuResolutionsTotal.WithLabelValues(mod.ID).Inc()
			s.metrics.MenuResolutionDuration.WithLabelValues(mod.ID).Observe(time.Since(start).Seconds())
		}
		if len(resolved) == 0 {
			continue
		}
		out = append(out, MenuResponse{
			ModuleID: mod.ID,
			Label:    mod.Label,
			Icon:     mod.Icon,
			Root:     mod.Root,
			Menus:    resolved,
		})
	}
	if out == nil {
		out = []MenuResponse{}
	}

	httputil.WriteSuccess(w, out)
}

// listRoutes returns the flat set of route paths the caller may open,
// useful for client-side prefetch decisions.
func (s *Server) listRoutes(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)

	routes := menu.AccessibleRoutes(s.provider.AllMenus(), p)
	if routes == nil {
		routes = []string{}
	}

	httputil.WriteSuccess(w, RoutesResponse{Routes: routes})
}
