package api

import (
	"github.com/freebsdly/ops-console/pkg/access"
	"github.com/freebsdly/ops-console/pkg/guard"
	"github.com/freebsdly/ops-console/pkg/tabs"
	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

// MenuResponse is the resolved menu tree for one module.
type MenuResponse struct {
	ModuleID string              `json:"module_id"`
	Label    string              `json:"label"`
	Icon     string              `json:"icon,omitempty"`
	Root     string              `json:"root"`
	Menus    []taxonomy.MenuNode `json:"menus"`
}

// RoutesResponse lists every route path the caller may open.
type RoutesResponse struct {
	Routes []string `json:"routes"`
}

// RouteAccessResponse is the guard's verdict for a single route.
type RouteAccessResponse struct {
	Path     string         `json:"path"`
	Decision guard.Decision `json:"decision"`
}

// BatchRouteRequest asks for verdicts on several routes at once, e.g. to
// grey out quick links.
type BatchRouteRequest struct {
	Paths []string `json:"paths"`
}

// BatchRouteResponse maps each requested path to its verdict.
type BatchRouteResponse struct {
	Results map[string]guard.Decision `json:"results"`
}

// TabStateResponse is the tab bar as the browser should render it.
type TabStateResponse struct {
	Tabs       []tabs.Record `json:"tabs"`
	Visible    []tabs.Record `json:"visible"`
	Overflow   []tabs.Record `json:"overflow,omitempty"`
	Selected   int           `json:"selected"`
	NavigateTo string        `json:"navigate_to,omitempty"`
}

// NavigateRequest reports a route activation from the browser.
type NavigateRequest struct {
	Path string `json:"path"`
}

// CleanupResponse reports how many duplicate tabs were removed, plus the
// resulting tab state.
type CleanupResponse struct {
	Removed int `json:"removed"`
	TabStateResponse
}

// LoginRequest authenticates a user directly by ID. Intended for
// development setups without an identity provider.
type LoginRequest struct {
	UserID string `json:"user_id"`
}

// LoginResponse carries the session token for subsequent requests.
type LoginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at"`
}

// SessionResponse describes the caller's current session.
type SessionResponse struct {
	UserID    string   `json:"user_id"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
	ExpiresAt string   `json:"expires_at"`
}

// PrincipalResponse describes a user's permission snapshot as seen by the
// cache.
type PrincipalResponse struct {
	UserID      string              `json:"user_id"`
	Roles       []string            `json:"roles"`
	Permissions []access.Permission `json:"permissions"`
}

// InvalidateResponse confirms a snapshot cache invalidation.
type InvalidateResponse struct {
	UserID      string `json:"user_id"`
	Invalidated bool   `json:"invalidated"`
}

// OIDCURLResponse returns the authorization URL to redirect the browser to.
type OIDCURLResponse struct {
	URL string `json:"url"`
}

// OIDCCallbackRequest exchanges an authorization code for a session.
type OIDCCallbackRequest struct {
	Code string `json:"code"`
}
