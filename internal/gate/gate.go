// Package gate decides allow/deny for inbound protected operations. It
// extracts and verifies the bearer credential, resolves the principal and
// its effective permission set, and short-circuits denied requests before
// any handler logic runs.
package gate

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/securegate/securegate/internal/directory"
	"github.com/securegate/securegate/internal/observability"
	"github.com/securegate/securegate/internal/platform/httpx"
	"github.com/securegate/securegate/internal/rbac"
	"github.com/securegate/securegate/internal/token"
)

// Middleware wires the authorization pipeline for HTTP handlers. It holds
// no per-request mutable state; every decision is a pure function of the
// incoming request and directory state at check time.
type Middleware struct {
	Codec    *token.Codec
	Dir      directory.Repository
	Resolver *rbac.Resolver
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	// Prefixes is the set of protected path prefixes. Requests outside
	// every prefix bypass the gate entirely.
	Prefixes []string
	// Now is injected in tests; defaults to time.Now.
	Now NowFunc
}

// Authenticate runs classify, extract, verify, and resolve-identity. On
// success the verified principal is attached to the request context for
// downstream handlers and Require. All credential failures collapse into
// the same 401 response; the distinct kind is only logged.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.protected(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			m.deny(w, "deny_missing", httpx.ErrMissingCredential)
			return
		}
		raw, ok := bearerToken(header)
		if !ok {
			m.deny(w, "deny_malformed", httpx.ErrMalformedCredential)
			return
		}

		principalID, err := m.Codec.Verify(raw, m.now())
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("credential rejected", slog.String("path", r.URL.Path), slog.Any("kind", err))
			}
			m.deny(w, "deny_invalid", httpx.ErrInvalidCredential)
			return
		}

		// A deleted or stale principal is indistinguishable from a forged
		// token at this boundary.
		user, err := m.Dir.FindUserByID(r.Context(), principalID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("credential subject unknown", slog.Int64("principal", principalID), slog.Any("error", err))
			}
			m.deny(w, "deny_invalid", httpx.ErrInvalidCredential)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), user)))
	})
}

// Require ensures the authenticated principal holds the named permission.
// The effective permission set is recomputed on every check so assignment
// changes take effect immediately. An empty permission means the route is
// authentication-only.
func (m Middleware) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := PrincipalFromContext(r.Context())
			if user == nil {
				m.deny(w, "deny_missing", httpx.ErrMissingCredential)
				return
			}
			if permission == "" {
				m.allow()
				next.ServeHTTP(w, r)
				return
			}

			granted, err := m.Resolver.EffectivePermissions(r.Context(), user.ID)
			if err != nil {
				// The principal can vanish between Authenticate's lookup
				// and this check; treat it like any other stale credential.
				if errors.Is(err, rbac.ErrPrincipalNotFound) {
					if m.Logger != nil {
						m.Logger.Debug("principal vanished before permission check", slog.Int64("principal", user.ID))
					}
					m.deny(w, "deny_invalid", httpx.ErrInvalidCredential)
					return
				}
				if m.Logger != nil {
					m.Logger.Error("resolve permissions", slog.Int64("principal", user.ID), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !granted.Has(permission) {
				m.deny(w, "deny_permission", httpx.ErrInsufficientPermission)
				return
			}
			m.allow()
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) protected(path string) bool {
	for _, prefix := range m.Prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m Middleware) deny(w http.ResponseWriter, outcome string, err error) {
	m.Metrics.RecordDecision(outcome)
	httpx.RespondError(w, err)
}

func (m Middleware) allow() {
	m.Metrics.RecordDecision("allow")
}

// bearerToken parses an Authorization header of the form "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
