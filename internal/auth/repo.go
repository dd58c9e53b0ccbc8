package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository defines persistence for session audit records.
type SessionRepository interface {
	RecordSession(ctx context.Context, session Session) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// PGSessionRepository implements SessionRepository using PostgreSQL.
type PGSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs a PostgreSQL session repository.
func NewSessionRepository(pool *pgxpool.Pool) *PGSessionRepository {
	return &PGSessionRepository{pool: pool}
}

// RecordSession persists an issued-credential audit row.
func (r *PGSessionRepository) RecordSession(ctx context.Context, session Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_sessions (id, user_id, issued_at, expires_at, ip, ua)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))`,
		session.ID, session.UserID, session.IssuedAt.UTC(), session.ExpiresAt.UTC(), session.IP, session.UserAgent)
	return err
}

// PurgeExpired deletes audit rows whose credential expired before the
// given instant and reports how many were removed.
func (r *PGSessionRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ SessionRepository = (*PGSessionRepository)(nil)
