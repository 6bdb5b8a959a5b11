// Package api implements the console's HTTP API.
//
// # Overview
//
// The server exposes the menu tree, route access verdicts, session
// lifecycle and the per-user tab bar under /api/v1. Every endpoint except
// the session entry points requires a session token, supplied either as a
// Bearer header or the console_session cookie.
//
// # Endpoints
//
// Session:
//
//	POST /api/v1/session/login          direct login (development setups)
//	GET  /api/v1/session/oidc/url       identity provider authorization URL
//	POST /api/v1/session/oidc/callback  code exchange
//	GET  /api/v1/session                current session and roles
//	POST /api/v1/session/logout         end session, clear cached state
//
// Menus and access:
//
//	GET  /api/v1/menus                  resolved menu tree per module
//	GET  /api/v1/menus/routes           flat list of accessible routes
//	GET  /api/v1/access/route?path=     guard verdict for one route
//	POST /api/v1/access/routes:batch    guard verdicts for many routes
//
// Tabs:
//
//	GET  /api/v1/tabs                   current tab bar (visible + overflow)
//	POST /api/v1/tabs/navigate          record a route activation
//	POST /api/v1/tabs/{index}/close     close one tab
//	POST /api/v1/tabs/{index}/close-others
//	POST /api/v1/tabs/{index}/duplicate
//	POST /api/v1/tabs/{index}/pin
//	POST /api/v1/tabs/close-all
//	POST /api/v1/tabs/cleanup           drop duplicate tabs
//
// Principals (admin surface):
//
//	GET  /api/v1/principals/{user_id}             inspect a snapshot (needs iam:read)
//	POST /api/v1/principals/{user_id}/invalidate  drop the cached snapshot (admin role)
//
// Mutating tab responses include navigate_to when the operation moved the
// active route, so the browser can follow along.
package api
