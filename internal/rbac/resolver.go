package rbac

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/securegate/securegate/internal/directory"
)

// ErrPrincipalNotFound indicates the principal id resolves to no known
// user. Distinct from an empty permission set: it usually means a stale or
// forged credential subject.
var ErrPrincipalNotFound = errors.New("rbac: principal not found")

// Resolver computes effective permission sets from directory state. It
// holds no state of its own; every resolution re-reads the current
// role/permission assignments.
type Resolver struct {
	dir directory.Repository
}

// NewResolver constructs a Resolver over the given directory.
func NewResolver(dir directory.Repository) *Resolver {
	return &Resolver{dir: dir}
}

// EffectivePermissions returns the union of permission names across all
// roles assigned to the principal. A principal with no roles, or whose
// roles carry no permissions, yields an empty set. Duplicate role
// assignments collapse (set semantics).
func (r *Resolver) EffectivePermissions(ctx context.Context, principalID int64) (PermissionSet, error) {
	if _, err := r.dir.FindUserByID(ctx, principalID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, err
	}

	roles, err := r.dir.RolesForUser(ctx, principalID)
	if err != nil {
		return nil, err
	}

	set := make(PermissionSet)
	if len(roles) == 0 {
		return set, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	seen := make(map[int64]struct{}, len(roles))
	for _, role := range roles {
		if _, dup := seen[role.ID]; dup {
			continue
		}
		seen[role.ID] = struct{}{}
		roleID := role.ID
		g.Go(func() error {
			perms, err := r.dir.PermissionsForRole(gctx, roleID)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, perm := range perms {
				set[perm.Name] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}
