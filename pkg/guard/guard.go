package guard

import (
	"context"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/freebsdly/ops-console/pkg/access"
	"github.com/freebsdly/ops-console/pkg/observability"
	"github.com/freebsdly/ops-console/pkg/permsource"
	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

// Decision is the terminal outcome of a navigation attempt. A denial always
// carries a redirect to the no-permission view with the attempted path as a
// return parameter.
type Decision struct {
	Granted    bool                `json:"granted"`
	Matched    *access.Requirement `json:"matched_requirement,omitempty"`
	RedirectTo string              `json:"redirect_to,omitempty"`

	// Source names what decided: "static", "roles", "taxonomy", "remote"
	// or "default".
	Source string `json:"source"`
}

// Decision sources.
const (
	SourceStatic   = "static"
	SourceRoles    = "roles"
	SourceTaxonomy = "taxonomy"
	SourceRemote   = "remote"
	SourceDefault  = "default"
)

// Options configures a Guard.
type Options struct {
	// RemoteTimeout bounds a single remote authority check. Zero means
	// DefaultRemoteTimeout.
	RemoteTimeout time.Duration

	// CacheSize and CacheTTL shape the short-lived decision cache for
	// remote checks. A zero CacheTTL disables caching.
	CacheSize int
	CacheTTL  time.Duration

	// NoPermissionPath overrides the deny redirect destination.
	NoPermissionPath string
}

// DefaultRemoteTimeout bounds remote authority checks when no timeout is
// configured.
const DefaultRemoteTimeout = 5 * time.Second

// Guard decides whether a navigation may activate a route. It combines the
// static rule table, the taxonomy, the local permission evaluator and the
// remote authority, fail-closed on remote errors.
type Guard struct {
	rules    *RuleTable
	provider taxonomy.Provider
	source   permsource.Source
	logger   *observability.Logger
	metrics  *Metrics

	timeout  time.Duration
	denyPath string

	flight singleflight.Group
	cache  *lru.LRU[string, access.Decision]
}

// New creates a guard. source may be nil, in which case every remote
// fallback denies.
func New(rules *RuleTable, provider taxonomy.Provider, source permsource.Source,
	logger *observability.Logger, metrics *Metrics, opts Options) *Guard {

	if rules == nil {
		rules = NewRuleTable(nil)
	}
	timeout := opts.RemoteTimeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	denyPath := opts.NoPermissionPath
	if denyPath == "" {
		denyPath = taxonomy.NoPermissionPath
	}

	g := &Guard{
		rules:    rules,
		provider: provider,
		source:   source,
		logger:   logger,
		metrics:  metrics,
		timeout:  timeout,
		denyPath: denyPath,
	}
	if opts.CacheTTL > 0 {
		size := opts.CacheSize
		if size <= 0 {
			size = 4096
		}
		g.cache = lru.NewLRU[string, access.Decision](size, nil, opts.CacheTTL)
	}
	return g
}

// CanActivate runs the navigation state machine for one route attempt:
//
//	START -> LOCAL_CHECK -> (GRANT | REMOTE_CHECK) -> (GRANT | DENY)
//
// Static route annotations are consulted first, then the taxonomy. Routes
// absent from both default to GRANT: unconfigured routes are deliberately
// accessible (see package docs).
func (g *Guard) CanActivate(ctx context.Context, p *access.Principal, path string) Decision {
	path = taxonomy.NormalizePath(path)

	if rule := g.rules.Match(path); rule != nil {
		return g.decideStatic(ctx, p, path, rule)
	}
	return g.decideFromTaxonomy(ctx, p, path)
}

// decideStatic handles routes carrying a static annotation.
func (g *Guard) decideStatic(ctx context.Context, p *access.Principal, path string, rule *Rule) Decision {
	// A bare role annotation is terminal: no remote fallback.
	if rule.Require == nil {
		if access.HasAnyRole(p, rule.Roles) {
			return g.grant(SourceRoles, nil)
		}
		return g.deny(SourceRoles, path)
	}

	d := access.Evaluate(p, rule.Require, rule.Roles)
	if d.Granted {
		return g.grant(SourceStatic, d.Matched)
	}
	return g.remoteCheck(ctx, p, path)
}

// decideFromTaxonomy handles routes with no static annotation.
func (g *Guard) decideFromTaxonomy(ctx context.Context, p *access.Principal, path string) Decision {
	all := g.provider.AllMenus()
	node := taxonomy.FindByPath(all, path)
	if node == nil {
		node = moduleRoot(g.provider, path)
	}
	if node == nil {
		// Unconfigured route: permissive by design, but visible to
		// operators through the log and the metric.
		if g.metrics != nil {
			g.metrics.Unconfigured.Inc()
		}
		if g.logger != nil {
			g.logger.WithField("path", path).
				Warn("route has no taxonomy entry, granting by default")
		}
		return g.grant(SourceDefault, nil)
	}

	d := access.Evaluate(p, node.Require, node.Roles)
	if d.Granted {
		return g.grant(SourceTaxonomy, d.Matched)
	}
	return g.remoteCheck(ctx, p, path)
}

// moduleRoot falls back to the module whose root path covers the route.
func moduleRoot(provider taxonomy.Provider, path string) *taxonomy.MenuNode {
	for _, m := range provider.Modules() {
		root := taxonomy.NormalizePath(m.Root)
		if root == "/" {
			continue
		}
		if path == root || len(path) > len(root) && path[:len(root)] == root && path[len(root)] == '/' {
			if n := taxonomy.FindByPrefix(m.Menus, path); n != nil {
				return n
			}
		}
	}
	return nil
}

// remoteCheck consults the remote authority. Its answer is authoritative;
// errors and timeouts are denials.
func (g *Guard) remoteCheck(ctx context.Context, p *access.Principal, path string) Decision {
	userID := ""
	if p != nil {
		userID = p.UserID
	}
	key := userID + "|" + path

	if g.cache != nil {
		if d, ok := g.cache.Get(key); ok {
			if d.Granted {
				return g.grant(SourceRemote, d.Matched)
			}
			return g.deny(SourceRemote, path)
		}
	}

	// Concurrent checks for the same user and path share one request.
	v, err, _ := g.flight.Do(key, func() (interface{}, error) {
		if g.source == nil {
			return access.Deny(), nil
		}
		checkCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return g.source.CheckRoutePermission(checkCtx, path, userID)
	})

	if err != nil {
		if g.metrics != nil {
			g.metrics.RemoteChecks.WithLabelValues("error").Inc()
		}
		if g.logger != nil {
			g.logger.WithError(err).WithFields(map[string]interface{}{
				"path": path, "user_id": userID,
			}).Error("remote permission check failed, denying")
		}
		return g.deny(SourceRemote, path)
	}

	d := v.(access.Decision)
	if g.cache != nil {
		g.cache.Add(key, d)
	}
	if d.Granted {
		if g.metrics != nil {
			g.metrics.RemoteChecks.WithLabelValues("granted").Inc()
		}
		return g.grant(SourceRemote, d.Matched)
	}
	if g.metrics != nil {
		g.metrics.RemoteChecks.WithLabelValues("denied").Inc()
	}
	return g.deny(SourceRemote, path)
}

func (g *Guard) grant(source string, matched *access.Requirement) Decision {
	if g.metrics != nil {
		g.metrics.Decisions.WithLabelValues("grant", source).Inc()
	}
	return Decision{Granted: true, Matched: matched, Source: source}
}

func (g *Guard) deny(source, attempted string) Decision {
	if g.metrics != nil {
		g.metrics.Decisions.WithLabelValues("deny", source).Inc()
	}
	return Decision{
		Granted:    false,
		Source:     source,
		RedirectTo: g.denyPath + "?returnUrl=" + url.QueryEscape(attempted),
	}
}
