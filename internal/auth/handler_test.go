package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/securegate/securegate/internal/auth"
	"github.com/securegate/securegate/internal/directory"
	"github.com/securegate/securegate/internal/token"
	_ "github.com/securegate/securegate/testing"
)

type stubDirectory struct {
	directory.Repository

	user *directory.User
}

func (s *stubDirectory) FindUserByUsername(_ context.Context, username string) (*directory.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, directory.ErrNotFound
	}
	return s.user, nil
}

type recordingSessions struct {
	recorded []auth.Session
}

func (r *recordingSessions) RecordSession(_ context.Context, session auth.Session) error {
	r.recorded = append(r.recorded, session)
	return nil
}

func (r *recordingSessions) PurgeExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func seedUser(t *testing.T, username, password string) *directory.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &directory.User{ID: 1, Username: username, PasswordHash: string(hashed)}
}

func newLoginHandler(t *testing.T, dir directory.Repository, sessions auth.SessionRepository, throttle *auth.Throttle) (*auth.Handler, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec("login-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	service := auth.NewService(dir, sessions, codec, nil)
	return auth.NewHandler(nil, service, throttle), codec
}

func postLogin(t *testing.T, handler *auth.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)
	return res
}

func TestLoginSuccess(t *testing.T) {
	sessions := &recordingSessions{}
	dir := &stubDirectory{user: seedUser(t, "admin", "admin123")}
	handler, codec := newLoginHandler(t, dir, sessions, nil)

	res := postLogin(t, handler, `{"username":"admin","password":"admin123"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	id, err := codec.Verify(payload.Token, time.Now())
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected subject 1, got %d", id)
	}
	if len(sessions.recorded) != 1 || sessions.recorded[0].UserID != 1 {
		t.Fatalf("expected one session audit record for user 1, got %+v", sessions.recorded)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	dir := &stubDirectory{user: seedUser(t, "admin", "admin123")}
	handler, _ := newLoginHandler(t, dir, nil, nil)

	res := postLogin(t, handler, `{"username":"admin","password":"wrong"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestLoginUnknownUserSameResponse(t *testing.T) {
	dir := &stubDirectory{user: seedUser(t, "admin", "admin123")}
	handler, _ := newLoginHandler(t, dir, nil, nil)

	wrongPass := postLogin(t, handler, `{"username":"admin","password":"wrong"}`)
	unknown := postLogin(t, handler, `{"username":"ghost","password":"whatever"}`)

	if wrongPass.Code != unknown.Code {
		t.Fatalf("status differs: %d vs %d", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Fatalf("body differs: %q vs %q", wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestLoginMalformedBody(t *testing.T) {
	handler, _ := newLoginHandler(t, &stubDirectory{}, nil, nil)

	for _, body := range []string{"not json", `{"username":"admin"}`, `{}`} {
		res := postLogin(t, handler, body)
		if res.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %q: expected 422, got %d", body, res.Code)
		}
	}
}

func TestLoginThrottled(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	throttle := auth.NewThrottle(client, 3, time.Minute)

	dir := &stubDirectory{user: seedUser(t, "admin", "admin123")}
	handler, _ := newLoginHandler(t, dir, nil, throttle)

	for i := 0; i < 3; i++ {
		res := postLogin(t, handler, `{"username":"admin","password":"wrong"}`)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, res.Code)
		}
	}

	res := postLogin(t, handler, `{"username":"admin","password":"admin123"}`)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after threshold, got %d", res.Code)
	}

	// Window expiry clears the counter.
	mr.FastForward(2 * time.Minute)
	res = postLogin(t, handler, `{"username":"admin","password":"admin123"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 after window, got %d", res.Code)
	}

	// Success resets the counter, so earlier failures stop counting.
	res = postLogin(t, handler, `{"username":"admin","password":"wrong"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}
