package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already normal", "/workbench/alerts", "/workbench/alerts"},
		{"query stripped", "/workbench/alerts?page=2", "/workbench/alerts"},
		{"fragment stripped", "/workbench/alerts#top", "/workbench/alerts"},
		{"query and fragment", "/a?x=1#y", "/a"},
		{"leading slash enforced", "workbench/alerts", "/workbench/alerts"},
		{"trailing slash collapsed", "/workbench/", "/workbench"},
		{"empty is root", "", "/"},
		{"bare root", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.in))
		})
	}
}

func TestFindByPath(t *testing.T) {
	menus := BuiltInModules()[0].Menus

	n := FindByPath(menus, "/workbench/dashboard/overview")
	require.NotNil(t, n)
	assert.Equal(t, "overview", n.ID)

	// Query strings do not affect matching.
	n = FindByPath(menus, "/workbench/alerts?severity=critical")
	require.NotNil(t, n)
	assert.Equal(t, "alerts", n.ID)

	assert.Nil(t, FindByPath(menus, "/workbench/unknown"))
}

func TestFindByPath_FirstDeclaredWins(t *testing.T) {
	// Two nodes share a path; depth-first declaration order decides.
	menus := []MenuNode{
		{ID: "first", Label: "First", Path: "/shared"},
		{ID: "second", Label: "Second", Path: "/shared"},
	}
	n := FindByPath(menus, "/shared")
	require.NotNil(t, n)
	assert.Equal(t, "first", n.ID)
}

func TestFindByPrefix(t *testing.T) {
	menus := BuiltInModules()[1].Menus

	// A sub-route falls back to the deepest configured entry covering it,
	// not the enclosing group.
	n := FindByPrefix(menus, "/configuration/resources/hosts/42/edit")
	require.NotNil(t, n)
	assert.Equal(t, "hosts", n.ID)

	// A route below the group but outside any leaf falls back to the group.
	n = FindByPrefix(menus, "/configuration/resources/import")
	require.NotNil(t, n)
	assert.Equal(t, "resources", n.ID)

	// Prefix match respects segment boundaries.
	assert.Nil(t, FindByPrefix(menus, "/configuration/resourcesextra"))
}

func TestFindByPrefix_LongestPrefixWins(t *testing.T) {
	menus := []MenuNode{
		{ID: "deep", Label: "Deep", Path: "/a/b/c"},
		{ID: "shallow", Label: "Shallow", Path: "/a", Children: []MenuNode{
			{ID: "mid", Label: "Mid", Path: "/a/b"},
		}},
	}

	// Declaration order does not matter; the most specific prefix wins.
	n := FindByPrefix(menus, "/a/b/c/d")
	require.NotNil(t, n)
	assert.Equal(t, "deep", n.ID)

	n = FindByPrefix(menus, "/a/b/x")
	require.NotNil(t, n)
	assert.Equal(t, "mid", n.ID)
}

func TestFlatten(t *testing.T) {
	paths := Flatten(BuiltInModules()[0].Menus)
	assert.Equal(t, []string{
		"/workbench/dashboard/overview",
		"/workbench/dashboard/analysis",
		"/workbench/alerts",
	}, paths)
}

func TestNewStaticProvider_Validation(t *testing.T) {
	_, err := NewStaticProvider([]Module{{ID: "a"}, {ID: "a"}})
	assert.Error(t, err)

	_, err = NewStaticProvider([]Module{{
		ID: "m",
		Menus: []MenuNode{
			{ID: "x", Label: "X", Path: "/m/x"},
			{ID: "x", Label: "X2", Path: "/m/x2"},
		},
	}})
	assert.Error(t, err)
}

func TestStaticProvider_Lookup(t *testing.T) {
	sp, err := NewStaticProvider(BuiltInModules())
	require.NoError(t, err)

	assert.Len(t, sp.Modules(), 3)
	assert.NotNil(t, sp.Menus("workbench"))
	assert.Nil(t, sp.Menus("nope"))

	all := sp.AllMenus()
	assert.NotNil(t, FindByPath(all, "/system/audit"))
}

func TestLoadFile(t *testing.T) {
	catalog := `
modules:
  - id: billing
    label: Billing
    root: /billing
    menus:
      - id: invoices
        label: Invoices
        path: /billing/invoices
        requirement:
          resource: billing
          action: read
      - id: reports
        label: Reports
        children:
          - id: monthly
            label: Monthly
            path: /billing/reports/monthly
`
	dir := t.TempDir()
	path := filepath.Join(dir, "billing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))

	sp, err := LoadFile(path)
	require.NoError(t, err)

	menus := sp.Menus("billing")
	require.Len(t, menus, 2)
	require.NotNil(t, menus[0].Require)
	assert.Equal(t, "billing", menus[0].Require.Resource)
	assert.Equal(t, "read", menus[0].Require.Action)
	assert.Equal(t, "monthly", menus[1].Children[0].ID)

	dp, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, dp.Modules(), 1)
}

func TestLoadFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modules: [oops"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
