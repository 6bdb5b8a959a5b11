package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPrincipal() *Principal {
	return NewPrincipal("u-1",
		[]string{"ops:admin", "ops:viewer"},
		[]Permission{
			{Resource: "configuration", Actions: []string{"read", "update"}},
			{Resource: "device", Actions: []string{"read"}},
		},
	)
}

func TestHasPermission(t *testing.T) {
	p := testPrincipal()

	tests := []struct {
		name     string
		resource string
		action   string
		want     bool
	}{
		{"granted action", "configuration", "read", true},
		{"second action on same resource", "configuration", "update", true},
		{"action not in set", "device", "delete", false},
		{"unknown resource", "billing", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(p, tt.resource, tt.action))
		})
	}
}

func TestHasPermission_NilPrincipal(t *testing.T) {
	assert.False(t, HasPermission(nil, "configuration", "read"))
	assert.False(t, HasRole(nil, "ops:admin"))
}

func TestHasRole(t *testing.T) {
	p := testPrincipal()

	assert.True(t, HasRole(p, "ops:admin"))
	assert.False(t, HasRole(p, "ops:auditor"))
	assert.True(t, HasAnyRole(p, []string{"ops:auditor", "ops:viewer"}))
	assert.False(t, HasAnyRole(p, []string{"ops:auditor"}))
	assert.False(t, HasAnyRole(p, nil))
}

func TestHasAnyAllPermissions(t *testing.T) {
	p := testPrincipal()

	both := []Requirement{
		{Resource: "configuration", Action: "read"},
		{Resource: "device", Action: "read"},
	}
	mixed := []Requirement{
		{Resource: "configuration", Action: "read"},
		{Resource: "billing", Action: "read"},
	}

	assert.True(t, HasAllPermissions(p, both))
	assert.False(t, HasAllPermissions(p, mixed))
	assert.True(t, HasAnyPermission(p, mixed))
	assert.False(t, HasAnyPermission(p, []Requirement{{Resource: "billing", Action: "read"}}))

	// Vacuous truth for AND, vacuous falsity for OR.
	assert.True(t, HasAllPermissions(p, nil))
	assert.False(t, HasAnyPermission(p, nil))
}

func TestEvaluate(t *testing.T) {
	p := testPrincipal()
	confRead := &Requirement{Resource: "configuration", Action: "read"}
	confDelete := &Requirement{Resource: "configuration", Action: "delete"}

	tests := []struct {
		name        string
		requirement *Requirement
		anyRoles    []string
		wantGranted bool
	}{
		{"open entry", nil, nil, true},
		{"requirement satisfied", confRead, nil, true},
		{"requirement denied", confDelete, nil, false},
		{"any role suffices", nil, []string{"ops:auditor", "ops:viewer"}, true},
		{"no listed role held", nil, []string{"ops:auditor"}, false},
		{"role and requirement both pass", confRead, []string{"ops:admin"}, true},
		{"role passes but requirement fails", confDelete, []string{"ops:admin"}, false},
		{"requirement passes but role fails", confRead, []string{"ops:auditor"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(p, tt.requirement, tt.anyRoles)
			assert.Equal(t, tt.wantGranted, d.Granted)
			if d.Granted && tt.requirement != nil {
				assert.Equal(t, tt.requirement, d.Matched)
			}
		})
	}
}

func TestEvaluate_EmptyPrincipalDenies(t *testing.T) {
	empty := NewPrincipal("u-2", nil, nil)

	d := Evaluate(empty, &Requirement{Resource: "configuration", Action: "read"}, nil)
	assert.False(t, d.Granted)

	// Open entries stay open even for an empty principal.
	assert.True(t, Evaluate(empty, nil, nil).Granted)
}

func TestNewPrincipal_MergesDuplicateResources(t *testing.T) {
	p := NewPrincipal("u-3", nil, []Permission{
		{Resource: "configuration", Actions: []string{"read"}},
		{Resource: "configuration", Actions: []string{"update", "read"}},
		{Resource: "empty", Actions: nil}, // dropped: actions set never empty
	})

	assert.True(t, HasPermission(p, "configuration", "read"))
	assert.True(t, HasPermission(p, "configuration", "update"))
	assert.False(t, HasPermission(p, "empty", "read"))
	assert.Len(t, p.Permissions(), 1)
}
