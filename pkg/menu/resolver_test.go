package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freebsdly/ops-console/pkg/access"
	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

func testTree() []taxonomy.MenuNode {
	return []taxonomy.MenuNode{
		{
			ID: "dashboard", Label: "Dashboard",
			Children: []taxonomy.MenuNode{
				{ID: "overview", Label: "Overview", Path: "/workbench/dashboard/overview"},
				{
					ID: "analysis", Label: "Analysis", Path: "/workbench/dashboard/analysis",
					Require: &access.Requirement{Resource: "analysis", Action: "read"},
				},
			},
		},
		{
			ID: "config", Label: "Configuration", Path: "/configuration",
			Children: []taxonomy.MenuNode{
				{
					ID: "hosts", Label: "Hosts", Path: "/configuration/hosts",
					Require: &access.Requirement{Resource: "configuration", Action: "read"},
				},
			},
		},
		{
			ID: "iam", Label: "Identity",
			Children: []taxonomy.MenuNode{
				{
					ID: "users", Label: "Users", Path: "/system/iam/users",
					Roles: []string{"ops:admin"},
				},
			},
		},
	}
}

func viewer() *access.Principal {
	return access.NewPrincipal("viewer", []string{"ops:viewer"}, []access.Permission{
		{Resource: "configuration", Actions: []string{"read"}},
	})
}

func admin() *access.Principal {
	return access.NewPrincipal("admin", []string{"ops:admin", "ops:viewer"}, []access.Permission{
		{Resource: "configuration", Actions: []string{"read", "update"}},
		{Resource: "analysis", Actions: []string{"read"}},
	})
}

func TestResolve_FiltersLeaves(t *testing.T) {
	got := Resolve(testTree(), viewer())

	require.Len(t, got, 2)

	// Open leaf kept, guarded analysis leaf dropped.
	assert.Equal(t, "dashboard", got[0].ID)
	require.Len(t, got[0].Children, 1)
	assert.Equal(t, "overview", got[0].Children[0].ID)

	// Configuration group keeps its surviving child.
	assert.Equal(t, "config", got[1].ID)
	require.Len(t, got[1].Children, 1)

	// Role-gated identity group vanishes entirely.
	for _, n := range got {
		assert.NotEqual(t, "iam", n.ID)
	}
}

func TestResolve_GroupWithPathBecomesLeaf(t *testing.T) {
	// A principal with no configuration permission loses the hosts child;
	// the group has a path, so it survives as a navigable leaf.
	p := access.NewPrincipal("bare", nil, nil)
	got := Resolve(testTree(), p)

	var config *taxonomy.MenuNode
	for i := range got {
		if got[i].ID == "config" {
			config = &got[i]
		}
	}
	require.NotNil(t, config)
	assert.Empty(t, config.Children)
	assert.Equal(t, "/configuration", config.Path)
}

func TestResolve_GroupWithoutPathDropped(t *testing.T) {
	p := access.NewPrincipal("bare", nil, nil)
	got := Resolve(testTree(), p)

	for _, n := range got {
		assert.NotEqual(t, "iam", n.ID, "pathless group with no surviving children must be dropped")
	}
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	tree := testTree()
	Resolve(tree, viewer())

	assert.Len(t, tree[0].Children, 2, "input tree must not be spliced in place")
	assert.Len(t, tree[2].Children, 1)
}

func TestResolve_Idempotent(t *testing.T) {
	for _, p := range []*access.Principal{viewer(), admin(), access.NewPrincipal("bare", nil, nil)} {
		once := Resolve(testTree(), p)
		twice := Resolve(once, p)
		assert.Equal(t, once, twice)
	}
}

func TestResolve_Monotonic(t *testing.T) {
	// Admin's roles and permissions are a superset of viewer's; every route
	// the viewer reaches must remain reachable for the admin.
	lesser := AccessibleRoutes(testTree(), viewer())
	greater := AccessibleRoutes(testTree(), admin())

	set := make(map[string]struct{}, len(greater))
	for _, r := range greater {
		set[r] = struct{}{}
	}
	for _, r := range lesser {
		_, ok := set[r]
		assert.True(t, ok, "route %s lost under superset principal", r)
	}
}

func TestResolve_OrderPreserved(t *testing.T) {
	got := Resolve(testTree(), admin())
	var ids []string
	for _, n := range got {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"dashboard", "config", "iam"}, ids)
}

func TestAccessibleRoutes(t *testing.T) {
	routes := AccessibleRoutes(testTree(), viewer())
	assert.Equal(t, []string{
		"/workbench/dashboard/overview",
		"/configuration",
		"/configuration/hosts",
	}, routes)
}
