package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/securegate/securegate/internal/directory"
	"github.com/securegate/securegate/internal/platform/httpx"
	"github.com/securegate/securegate/internal/token"
)

// Service wraps login business rules.
type Service struct {
	dir      directory.Repository
	sessions SessionRepository
	codec    *token.Codec
	logger   *slog.Logger
}

// NewService constructs a new Service. sessions may be nil, in which case
// issued credentials are not recorded.
func NewService(dir directory.Repository, sessions SessionRepository, codec *token.Codec, logger *slog.Logger) *Service {
	return &Service{dir: dir, sessions: sessions, codec: codec, logger: logger}
}

// Login validates username/password credentials and issues a bearer token.
// Unknown usernames and wrong passwords return the identical error so the
// response does not reveal which principals exist.
func (s *Service) Login(ctx context.Context, username, password, ip, ua string) (string, error) {
	user, err := s.dir.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return "", httpx.ErrInvalidLogin
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", httpx.ErrInvalidLogin
	}

	now := time.Now().UTC()
	raw, err := s.codec.Issue(user.ID, now)
	if err != nil {
		return "", err
	}

	if s.sessions != nil {
		session := Session{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			IssuedAt:  now,
			ExpiresAt: now.Add(s.codec.TTL()),
			IP:        ip,
			UserAgent: ua,
		}
		if err := s.sessions.RecordSession(ctx, session); err != nil && s.logger != nil {
			s.logger.Warn("record session", slog.Int64("user", user.ID), slog.Any("error", err))
		}
	}
	return raw, nil
}
