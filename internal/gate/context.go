package gate

import (
	"context"

	"github.com/securegate/securegate/internal/directory"
)

type principalContextKey struct{}

// ContextWithPrincipal stores the authenticated principal in context.
func ContextWithPrincipal(ctx context.Context, user *directory.User) context.Context {
	return context.WithValue(ctx, principalContextKey{}, user)
}

// PrincipalFromContext extracts the authenticated principal from context.
// Returns nil when the request did not pass through Authenticate.
func PrincipalFromContext(ctx context.Context) *directory.User {
	user, _ := ctx.Value(principalContextKey{}).(*directory.User)
	return user
}
