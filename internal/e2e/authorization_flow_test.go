package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/securegate/securegate/internal/admin"
	"github.com/securegate/securegate/internal/app"
	"github.com/securegate/securegate/internal/auth"
	"github.com/securegate/securegate/internal/directory"
	"github.com/securegate/securegate/internal/gate"
	"github.com/securegate/securegate/internal/rbac"
	"github.com/securegate/securegate/internal/resource"
	"github.com/securegate/securegate/internal/token"
	_ "github.com/securegate/securegate/testing"
)

const (
	adminUserID   = int64(1)
	basicUserID   = int64(2)
	adminRoleID   = int64(1)
	userRoleID    = int64(2)
	adminPassword = "admin123"
	userPassword  = "user123"
)

// newStack builds the full HTTP stack on an in-memory directory, seeded
// with the same catalog the database seeder installs.
func newStack(t testing.TB) (http.Handler, *directory.MemoryRepository) {
	t.Helper()

	dir := directory.NewMemoryRepository()
	dir.PutPermission(directory.Permission{ID: 1, Name: rbac.PermReadData})
	dir.PutPermission(directory.Permission{ID: 2, Name: rbac.PermWriteData})
	dir.PutPermission(directory.Permission{ID: 3, Name: rbac.PermAdmin})
	dir.PutRole(directory.Role{ID: adminRoleID, Name: "Admin"})
	dir.PutRole(directory.Role{ID: userRoleID, Name: "User"})
	dir.GrantPermission(adminRoleID, 1)
	dir.GrantPermission(adminRoleID, 2)
	dir.GrantPermission(adminRoleID, 3)
	dir.GrantPermission(userRoleID, 1)

	dir.PutUser(directory.User{ID: adminUserID, Username: "admin", PasswordHash: hashPassword(t, adminPassword)})
	dir.PutUser(directory.User{ID: basicUserID, Username: "user", PasswordHash: hashPassword(t, userPassword)})
	require.NoError(t, dir.AssignRole(context.Background(), adminUserID, adminRoleID))
	require.NoError(t, dir.AssignRole(context.Background(), basicUserID, userRoleID))

	codec, err := token.NewCodec("e2e-secret", time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &app.Config{
		AppEnv:            "test",
		AppRequestTimeout: 10 * time.Second,
		ProtectedPrefixes: []string{"/admin", "/resource"},
	}

	service := auth.NewService(dir, nil, codec, logger)
	handler := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     auth.NewHandler(logger, service, nil),
		AdminHandler:    admin.NewHandler(logger, dir),
		ResourceHandler: resource.NewHandler(),
		Gate: gate.Middleware{
			Codec:    codec,
			Dir:      dir,
			Resolver: rbac.NewResolver(dir),
			Logger:   logger,
			Prefixes: cfg.ProtectedPrefixes,
		},
	})
	return handler, dir
}

func hashPassword(t testing.TB, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func doRequest(t testing.TB, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t testing.TB, h http.Handler, username, password string) string {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLoginAndResourceAccess(t *testing.T) {
	h, _ := newStack(t)

	tok := login(t, h, "user", userPassword)

	rec := doRequest(t, h, http.MethodGet, "/resource/", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Message  string `json:"message"`
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "You have access to this resource", payload.Message)
	require.Equal(t, basicUserID, payload.UserID)
	require.Equal(t, "user", payload.Username)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h, _ := newStack(t)

	rec := doRequest(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin",
		"password": "not-the-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireCredential(t *testing.T) {
	h, _ := newStack(t)

	for _, path := range []string{"/resource/", "/admin/roles"} {
		rec := doRequest(t, h, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := doRequest(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRequireAdminPermission(t *testing.T) {
	h, _ := newStack(t)

	userTok := login(t, h, "user", userPassword)
	rec := doRequest(t, h, http.MethodGet, "/admin/roles", userTok, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	adminTok := login(t, h, "admin", adminPassword)
	rec = doRequest(t, h, http.MethodGet, "/admin/roles", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRoleAssignmentTakesEffectImmediately(t *testing.T) {
	h, _ := newStack(t)

	adminTok := login(t, h, "admin", adminPassword)
	userTok := login(t, h, "user", userPassword)

	rec := doRequest(t, h, http.MethodGet, "/admin/permissions", userTok, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/admin/assign-role", adminTok, map[string]int64{
		"userId": basicUserID,
		"roleId": adminRoleID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var status struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "Role assigned", status.Status)

	// Same credential, next check sees the new grant.
	rec = doRequest(t, h, http.MethodGet, "/admin/permissions", userTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAssignRoleUnknownTargets(t *testing.T) {
	h, _ := newStack(t)
	adminTok := login(t, h, "admin", adminPassword)

	cases := []struct {
		name   string
		userID int64
		roleID int64
	}{
		{"unknown user", 999, adminRoleID},
		{"unknown role", basicUserID, 999},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/admin/assign-role", adminTok, map[string]int64{
				"userId": tc.userID,
				"roleId": tc.roleID,
			})
			require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
		})
	}
}

func TestDeletedPrincipalIsRejected(t *testing.T) {
	h, dir := newStack(t)

	tok := login(t, h, "user", userPassword)
	dir.RemoveUser(basicUserID)

	rec := doRequest(t, h, http.MethodGet, "/resource/", tok, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func BenchmarkGateAllow(b *testing.B) {
	h, _ := newStack(b)
	tok := login(b, h, "user", userPassword)

	req := httptest.NewRequest(http.MethodGet, "/resource/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
