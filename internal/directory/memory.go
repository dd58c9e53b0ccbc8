package directory

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository used by tests and local
// experiments. Safe for concurrent use.
type MemoryRepository struct {
	mu        sync.RWMutex
	users     map[int64]User
	roles     map[int64]Role
	perms     map[int64]Permission
	userRoles map[int64]map[int64]struct{}
	rolePerms map[int64]map[int64]struct{}
}

// NewMemoryRepository constructs an empty in-memory directory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:     make(map[int64]User),
		roles:     make(map[int64]Role),
		perms:     make(map[int64]Permission),
		userRoles: make(map[int64]map[int64]struct{}),
		rolePerms: make(map[int64]map[int64]struct{}),
	}
}

// PutUser inserts or replaces a user.
func (m *MemoryRepository) PutUser(user User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// PutRole inserts or replaces a role.
func (m *MemoryRepository) PutRole(role Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[role.ID] = role
}

// PutPermission inserts or replaces a permission.
func (m *MemoryRepository) PutPermission(perm Permission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perms[perm.ID] = perm
}

// GrantPermission attaches a permission to a role.
func (m *MemoryRepository) GrantPermission(roleID, permID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rolePerms[roleID] == nil {
		m.rolePerms[roleID] = make(map[int64]struct{})
	}
	m.rolePerms[roleID][permID] = struct{}{}
}

// RemoveUser deletes a user, simulating a stale credential subject.
func (m *MemoryRepository) RemoveUser(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	delete(m.userRoles, id)
}

// FindUserByID implements Repository.
func (m *MemoryRepository) FindUserByID(_ context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// FindUserByUsername implements Repository.
func (m *MemoryRepository) FindUserByUsername(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// FindRoleByID implements Repository.
func (m *MemoryRepository) FindRoleByID(_ context.Context, id int64) (*Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &role, nil
}

// RolesForUser implements Repository.
func (m *MemoryRepository) RolesForUser(_ context.Context, userID int64) ([]Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var roles []Role
	for roleID := range m.userRoles[userID] {
		if role, ok := m.roles[roleID]; ok {
			roles = append(roles, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

// PermissionsForRole implements Repository.
func (m *MemoryRepository) PermissionsForRole(_ context.Context, roleID int64) ([]Permission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var perms []Permission
	for permID := range m.rolePerms[roleID] {
		if perm, ok := m.perms[permID]; ok {
			perms = append(perms, perm)
		}
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i].ID < perms[j].ID })
	return perms, nil
}

// AssignRole implements Repository.
func (m *MemoryRepository) AssignRole(_ context.Context, userID, roleID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.roles[roleID]; !ok {
		return ErrNotFound
	}
	if m.userRoles[userID] == nil {
		m.userRoles[userID] = make(map[int64]struct{})
	}
	m.userRoles[userID][roleID] = struct{}{}
	return nil
}

// ListRoles implements Repository.
func (m *MemoryRepository) ListRoles(_ context.Context) ([]Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roles := make([]Role, 0, len(m.roles))
	for _, role := range m.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

// ListPermissions implements Repository.
func (m *MemoryRepository) ListPermissions(_ context.Context) ([]Permission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	perms := make([]Permission, 0, len(m.perms))
	for _, perm := range m.perms {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i].Name < perms[j].Name })
	return perms, nil
}

var _ Repository = (*MemoryRepository)(nil)
