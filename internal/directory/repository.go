package directory

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("directory: not found")

// Repository defines directory lookups and the administrative assignment
// operation. Each call reflects a consistent snapshot of assignment edges;
// no linearizability is promised across separate calls.
type Repository interface {
	FindUserByID(ctx context.Context, id int64) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindRoleByID(ctx context.Context, id int64) (*Role, error)
	RolesForUser(ctx context.Context, userID int64) ([]Role, error)
	PermissionsForRole(ctx context.Context, roleID int64) ([]Permission, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	ListRoles(ctx context.Context) ([]Role, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
}
