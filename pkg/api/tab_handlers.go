package api

import (
	"net/http"

	"github.com/freebsdly/ops-console/pkg/httputil"
	"github.com/freebsdly/ops-console/pkg/middleware"
	"github.com/freebsdly/ops-console/pkg/tabs"
)

func (s *Server) tabSet(r *http.Request) *TabSet {
	sess := middleware.GetSession(r)
	return s.tabSets.Get(r.Context(), sess.UserID)
}

func (s *Server) countTabOp(operation string) {
	if s.metrics != nil {
		s.metrics.TabOperationsTotal.WithLabelValues(operation).Inc()
	}
}

// tabState projects the manager into the wire shape, honoring the visible
// strip limit.
func (s *Server) tabState(r *http.Request, ts *TabSet, navigateTo string) TabStateResponse {
	limit, err := httputil.ParseQueryInt(r, "limit", s.visibleTabs)
	if err != nil || limit <= 0 {
		limit = s.visibleTabs
	}

	var resp TabStateResponse
	ts.Do(func(m *tabs.Manager) {
		resp = TabStateResponse{
			Tabs:     m.Tabs(),
			Visible:  m.Visible(limit),
			Overflow: m.Overflow(limit),
			Selected: m.Selected(),
		}
	})
	resp.NavigateTo = navigateTo
	return resp
}

// getTabs returns the caller's current tab bar.
func (s *Server) getTabs(w http.ResponseWriter, r *http.Request) {
	ts := s.tabSet(r)
	httputil.WriteSuccess(w, s.tabState(r, ts, ""))
}

// navigateTab records a route activation, opening or re-selecting a tab.
func (s *Server) navigateTab(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Path, "path") {
		return
	}

	ts := s.tabSet(r)
	nav := ts.Do(func(m *tabs.Manager) {
		m.OnNavigate(r.Context(), req.Path)
	})
	s.countTabOp("navigate")

	httputil.WriteSuccess(w, s.tabState(r, ts, nav))
}

// closeTab closes the tab at the given index.
func (s *Server) closeTab(w http.ResponseWriter, r *http.Request) {
	index, ok := httputil.ParsePathIntOrError(w, r, "index")
	if !ok {
		return
	}

	ts := s.tabSet(r)
	nav := ts.Do(func(m *tabs.Manager) {
		m.Close(r.Context(), index)
	})
	s.countTabOp("close")

	httputil.WriteSuccess(w, s.tabState(r, ts, nav))
}

// closeOtherTabs closes every closable tab except the one at the index.
func (s *Server) closeOtherTabs(w http.ResponseWriter, r *http.Request) {
	index, ok := httputil.ParsePathIntOrError(w, r, "index")
	if !ok {
		return
	}

	ts := s.tabSet(r)
	nav := ts.Do(func(m *tabs.Manager) {
		m.CloseOthers(r.Context(), index)
	})
	s.countTabOp("close_others")

	httputil.WriteSuccess(w, s.tabState(r, ts, nav))
}

// closeAllTabs collapses the bar back to the pinned tabs.
func (s *Server) closeAllTabs(w http.ResponseWriter, r *http.Request) {
	ts := s.tabSet(r)
	nav := ts.Do(func(m *tabs.Manager) {
		m.CloseAll(r.Context())
	})
	s.countTabOp("close_all")

	httputil.WriteSuccess(w, s.tabState(r, ts, nav))
}

// duplicateTab clones the tab at the index and selects the clone.
func (s *Server) duplicateTab(w http.ResponseWriter, r *http.Request) {
	index, ok := httputil.ParsePathIntOrError(w, r, "index")
	if !ok {
		return
	}

	ts := s.tabSet(r)
	nav := ts.Do(func(m *tabs.Manager) {
		m.Duplicate(r.Context(), index)
	})
	s.countTabOp("duplicate")

	httputil.WriteSuccess(w, s.tabState(r, ts, nav))
}

// pinTab makes the tab at the index permanent.
func (s *Server) pinTab(w http.ResponseWriter, r *http.Request) {
	index, ok := httputil.ParsePathIntOrError(w, r, "index")
	if !ok {
		return
	}

	ts := s.tabSet(r)
	nav := ts.Do(func(m *tabs.Manager) {
		m.Pin(r.Context(), index)
	})
	s.countTabOp("pin")

	httputil.WriteSuccess(w, s.tabState(r, ts, nav))
}

// cleanupTabs removes duplicate tabs accumulated by older clients.
func (s *Server) cleanupTabs(w http.ResponseWriter, r *http.Request) {
	ts := s.tabSet(r)
	removed := 0
	nav := ts.Do(func(m *tabs.Manager) {
		removed = m.CleanupDuplicates(r.Context())
	})
	s.countTabOp("cleanup")

	httputil.WriteSuccess(w, CleanupResponse{
		Removed:          removed,
		TabStateResponse: s.tabState(r, ts, nav),
	})
}
