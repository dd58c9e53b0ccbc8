package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securegate/securegate/internal/directory"
)

type stubDirectory struct {
	directory.Repository

	users     map[int64]*directory.User
	userRoles map[int64][]directory.Role
	rolePerms map[int64][]directory.Permission
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		users:     make(map[int64]*directory.User),
		userRoles: make(map[int64][]directory.Role),
		rolePerms: make(map[int64][]directory.Permission),
	}
}

func (s *stubDirectory) FindUserByID(_ context.Context, id int64) (*directory.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return user, nil
}

func (s *stubDirectory) RolesForUser(_ context.Context, userID int64) ([]directory.Role, error) {
	return s.userRoles[userID], nil
}

func (s *stubDirectory) PermissionsForRole(_ context.Context, roleID int64) ([]directory.Permission, error) {
	return s.rolePerms[roleID], nil
}

func TestEffectivePermissionsUnion(t *testing.T) {
	dir := newStubDirectory()
	dir.users[1] = &directory.User{ID: 1, Username: "admin"}
	dir.userRoles[1] = []directory.Role{{ID: 10, Name: "Admin"}, {ID: 11, Name: "User"}}
	dir.rolePerms[10] = []directory.Permission{
		{ID: 100, Name: PermReadData},
		{ID: 101, Name: PermWriteData},
		{ID: 102, Name: PermAdmin},
	}
	dir.rolePerms[11] = []directory.Permission{{ID: 100, Name: PermReadData}}

	set, err := NewResolver(dir).EffectivePermissions(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{PermReadData, PermWriteData, PermAdmin}, set.Names())
	assert.True(t, set.Has(PermAdmin))
	assert.False(t, set.Has("DELETE_DATA"))
}

func TestEffectivePermissionsNoRoles(t *testing.T) {
	dir := newStubDirectory()
	dir.users[2] = &directory.User{ID: 2, Username: "lonely"}

	set, err := NewResolver(dir).EffectivePermissions(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestEffectivePermissionsEmptyRole(t *testing.T) {
	dir := newStubDirectory()
	dir.users[3] = &directory.User{ID: 3, Username: "member"}
	dir.userRoles[3] = []directory.Role{{ID: 20, Name: "Shell"}}

	set, err := NewResolver(dir).EffectivePermissions(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestEffectivePermissionsDuplicateRoleAssignment(t *testing.T) {
	dir := newStubDirectory()
	dir.users[4] = &directory.User{ID: 4, Username: "dup"}
	dir.userRoles[4] = []directory.Role{{ID: 30, Name: "User"}, {ID: 30, Name: "User"}}
	dir.rolePerms[30] = []directory.Permission{{ID: 100, Name: PermReadData}}

	set, err := NewResolver(dir).EffectivePermissions(context.Background(), 4)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{PermReadData}, set.Names())
}

func TestEffectivePermissionsUnknownPrincipal(t *testing.T) {
	dir := newStubDirectory()

	_, err := NewResolver(dir).EffectivePermissions(context.Background(), 99)
	assert.ErrorIs(t, err, ErrPrincipalNotFound)
}
