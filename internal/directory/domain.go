// Package directory owns principals, roles, permissions, and the
// many-to-many assignment edges between them. The authorization pipeline
// only ever reads this state; mutation happens through administrative
// operations.
package directory

// User represents a principal known to the directory.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Role represents a named grouping of permissions.
type Role struct {
	ID   int64
	Name string
}

// Permission represents an atomic named capability.
type Permission struct {
	ID   int64
	Name string
}
