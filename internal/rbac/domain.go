// Package rbac computes effective permission sets for principals.
package rbac

// Permission names in the seeded catalog.
const (
	PermReadData  = "READ_DATA"
	PermWriteData = "WRITE_DATA"
	PermAdmin     = "ADMIN"
)

// PermissionSet is the effective permission set of a principal: the union
// of permission names across all assigned roles, computed at check time.
type PermissionSet map[string]struct{}

// Has reports whether the named permission is in the set.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members of the set in unspecified order.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}
