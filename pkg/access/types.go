package access

// Permission grants a set of actions on a single resource.
// A stored permission always carries at least one action.
type Permission struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
}

// Allows reports whether the permission covers the given action.
func (p Permission) Allows(action string) bool {
	for _, a := range p.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Requirement is a single fine-grained check a route or menu entry may demand.
type Requirement struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// String returns the canonical resource:action form.
func (r Requirement) String() string {
	return r.Resource + ":" + r.Action
}

// Principal is an immutable snapshot of the authenticated user's roles and
// fine-grained permissions. It is replaced wholesale on login, logout and
// permission refresh; callers never mutate one in place.
type Principal struct {
	UserID      string
	roles       map[string]struct{}
	permissions map[string]Permission // keyed by resource
}

// NewPrincipal builds a principal snapshot from raw role and permission lists.
// Duplicate permission entries for the same resource are merged.
func NewPrincipal(userID string, roles []string, permissions []Permission) *Principal {
	p := &Principal{
		UserID:      userID,
		roles:       make(map[string]struct{}, len(roles)),
		permissions: make(map[string]Permission, len(permissions)),
	}
	for _, r := range roles {
		p.roles[r] = struct{}{}
	}
	for _, perm := range permissions {
		if len(perm.Actions) == 0 {
			continue
		}
		existing, ok := p.permissions[perm.Resource]
		if !ok {
			p.permissions[perm.Resource] = Permission{
				Resource: perm.Resource,
				Actions:  append([]string(nil), perm.Actions...),
			}
			continue
		}
		for _, a := range perm.Actions {
			if !existing.Allows(a) {
				existing.Actions = append(existing.Actions, a)
			}
		}
		p.permissions[perm.Resource] = existing
	}
	return p
}

// Roles returns the role identifiers held by the principal.
func (p *Principal) Roles() []string {
	if p == nil {
		return nil
	}
	roles := make([]string, 0, len(p.roles))
	for r := range p.roles {
		roles = append(roles, r)
	}
	return roles
}

// Permissions returns the merged permission entries held by the principal.
func (p *Principal) Permissions() []Permission {
	if p == nil {
		return nil
	}
	perms := make([]Permission, 0, len(p.permissions))
	for _, perm := range p.permissions {
		perms = append(perms, perm)
	}
	return perms
}

// Decision is the outcome of evaluating a requirement against a principal,
// or of resolving a route.
type Decision struct {
	Granted bool         `json:"granted"`
	Matched *Requirement `json:"matched_requirement,omitempty"`
}

// Grant returns a granting decision, optionally recording the requirement
// that was satisfied.
func Grant(matched *Requirement) Decision {
	return Decision{Granted: true, Matched: matched}
}

// Deny returns a denying decision.
func Deny() Decision {
	return Decision{Granted: false}
}
