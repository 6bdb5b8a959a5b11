package permsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/freebsdly/ops-console/pkg/access"
)

// envelope is the backend's unified response wrapper. A zero code means
// success; data carries the payload.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HTTPSource implements Source against the backend permission service.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the default instrumented client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// NewHTTPSource creates a source talking to the permission service at
// baseURL. Outbound requests are traced via otelhttp.
func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetUserPermissions fetches the user's fine-grained permissions.
func (s *HTTPSource) GetUserPermissions(ctx context.Context, userID string) ([]access.Permission, error) {
	var perms []access.Permission
	err := s.get(ctx, fmt.Sprintf("/api/v1/users/%s/permissions", url.PathEscape(userID)), &perms)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions for user %s: %w", userID, err)
	}
	return perms, nil
}

// GetUserRoles fetches the user's role identifiers.
func (s *HTTPSource) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	var roles []string
	err := s.get(ctx, fmt.Sprintf("/api/v1/users/%s/roles", url.PathEscape(userID)), &roles)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles for user %s: %w", userID, err)
	}
	return roles, nil
}

type routeCheckRequest struct {
	UserID string   `json:"user_id"`
	Paths  []string `json:"paths"`
}

type routeCheckResponse struct {
	Decisions []access.Decision `json:"decisions"`
}

// CheckRoutePermission asks the remote authority about a single route.
func (s *HTTPSource) CheckRoutePermission(ctx context.Context, path, userID string) (access.Decision, error) {
	decisions, err := s.CheckBatchRoutePermissions(ctx, []string{path}, userID)
	if err != nil {
		return access.Deny(), err
	}
	if len(decisions) != 1 {
		return access.Deny(), fmt.Errorf("route check returned %d decisions, want 1", len(decisions))
	}
	return decisions[0], nil
}

// CheckBatchRoutePermissions checks several routes in one round trip.
func (s *HTTPSource) CheckBatchRoutePermissions(ctx context.Context, paths []string, userID string) ([]access.Decision, error) {
	var resp routeCheckResponse
	err := s.post(ctx, "/api/v1/permissions/routes/check", routeCheckRequest{UserID: userID, Paths: paths}, &resp)
	if err != nil {
		return nil, fmt.Errorf("route permission check failed: %w", err)
	}
	if len(resp.Decisions) != len(paths) {
		return nil, fmt.Errorf("route check returned %d decisions, want %d", len(resp.Decisions), len(paths))
	}
	return resp.Decisions, nil
}

func (s *HTTPSource) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, dest)
}

func (s *HTTPSource) post(ctx context.Context, path string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, dest)
}

// do executes the request and unwraps the {code, message, data} envelope.
func (s *HTTPSource) do(req *http.Request, dest interface{}) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("permission service returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("malformed permission service response: %w", err)
	}
	if env.Code != 0 {
		return fmt.Errorf("permission service error %d: %s", env.Code, env.Message)
	}
	if dest == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("malformed permission service payload: %w", err)
	}
	return nil
}
