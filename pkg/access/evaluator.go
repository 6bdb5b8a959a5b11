package access

// The evaluator is pure: no I/O, no errors. Absence of data (nil principal,
// empty permission list) simply evaluates to a denial.

// HasPermission reports whether the principal holds a permission entry for
// resource whose action set contains action.
func HasPermission(p *Principal, resource, action string) bool {
	if p == nil {
		return false
	}
	perm, ok := p.permissions[resource]
	if !ok {
		return false
	}
	return perm.Allows(action)
}

// HasRole reports whether the principal holds the given role.
func HasRole(p *Principal, roleID string) bool {
	if p == nil {
		return false
	}
	_, ok := p.roles[roleID]
	return ok
}

// HasAnyRole reports whether the principal holds at least one of the given
// roles. An empty role list evaluates to false.
func HasAnyRole(p *Principal, roleIDs []string) bool {
	for _, r := range roleIDs {
		if HasRole(p, r) {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the principal satisfies at least one of
// the requirements.
func HasAnyPermission(p *Principal, requirements []Requirement) bool {
	for _, req := range requirements {
		if HasPermission(p, req.Resource, req.Action) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the principal satisfies every requirement.
// An empty requirement list evaluates to true.
func HasAllPermissions(p *Principal, requirements []Requirement) bool {
	for _, req := range requirements {
		if !HasPermission(p, req.Resource, req.Action) {
			return false
		}
	}
	return true
}

// Evaluate decides access for an entry carrying an optional fine-grained
// requirement and an optional role list.
//
// With neither present the entry is open and access is granted. When a role
// list is present, membership in any one listed role suffices. When a
// requirement is present, the principal must hold it. When both are present
// both checks must pass: the role check runs first, the fine-grained check
// second.
func Evaluate(p *Principal, requirement *Requirement, anyRoles []string) Decision {
	if requirement == nil && len(anyRoles) == 0 {
		return Grant(nil)
	}
	if len(anyRoles) > 0 && !HasAnyRole(p, anyRoles) {
		return Deny()
	}
	if requirement != nil {
		if !HasPermission(p, requirement.Resource, requirement.Action) {
			return Deny()
		}
		return Grant(requirement)
	}
	return Grant(nil)
}
