// Package token issues and verifies the signed bearer credentials that
// assert a principal's identity.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failure kinds. The gate merges all of them into a single
// caller-facing response; the distinction exists for logging and tests.
var (
	// ErrMalformed indicates the encoding could not be parsed or the
	// subject is not a valid principal identifier.
	ErrMalformed = errors.New("token: malformed")
	// ErrBadSignature indicates the signature does not match the secret.
	ErrBadSignature = errors.New("token: bad signature")
	// ErrExpired indicates the credential expiry has passed.
	ErrExpired = errors.New("token: expired")
)

// Codec issues and verifies HS256-signed credentials. The signing secret
// and TTL are injected once at construction; there is no other source of
// truth for either.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec constructs a Codec.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	return &Codec{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured credential lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue produces a credential for the principal expiring at now+TTL.
// The signature covers subject and expiry, so tampering with either
// invalidates the token.
func (c *Codec) Issue(principalID int64, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(principalID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature and expiry against the given time and returns
// the principal identifier carried in the subject claim. Signature
// comparison is constant-time (hmac.Equal inside the HS256 verifier).
// Pure function of (raw, now, secret); no side effects.
func (c *Codec) Verify(raw string, now time.Time) (int64, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, ErrBadSignature
		default:
			return 0, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, ErrMalformed
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	return id, nil
}
