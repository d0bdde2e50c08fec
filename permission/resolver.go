package permission

import (
	"fmt"
	"sort"
)

// Resolver answers "which permissions does this role set grant". It is
// built once from a [Table], holds its own deep copy, and is immutable
// and safe for unlimited concurrent callers.
type Resolver struct {
	grants map[Role]map[Permission]struct{}
}

// NewResolver validates and copies the table. Every role in the table
// must be a known role with a non-empty grant list.
func NewResolver(table Table) (*Resolver, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("empty permission table")
	}

	grants := make(map[Role]map[Permission]struct{}, len(table))
	for role, perms := range table {
		if _, err := ParseRole(string(role)); err != nil {
			return nil, err
		}
		if len(perms) == 0 {
			return nil, fmt.Errorf("role %q grants no permissions", role)
		}
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			if p == "" {
				return nil, fmt.Errorf("role %q grants an empty permission", role)
			}
			set[p] = struct{}{}
		}
		grants[role] = set
	}

	return &Resolver{grants: grants}, nil
}

// Resolve unions the grant sets of the given roles. Unknown roles
// contribute nothing. The result is sorted and duplicate-free.
func (r *Resolver) Resolve(roles []Role) []Permission {
	union := make(map[Permission]struct{})
	for _, role := range roles {
		for p := range r.grants[role] {
			union[p] = struct{}{}
		}
	}

	out := make([]Permission, 0, len(union))
	for p := range union {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Allows reports whether any of the given roles grants the permission.
func (r *Resolver) Allows(roles []Role, p Permission) bool {
	for _, role := range roles {
		if _, ok := r.grants[role][p]; ok {
			return true
		}
	}
	return false
}

// AllowsAll reports whether the role set grants every listed permission.
func (r *Resolver) AllowsAll(roles []Role, perms ...Permission) bool {
	for _, p := range perms {
		if !r.Allows(roles, p) {
			return false
		}
	}
	return true
}
