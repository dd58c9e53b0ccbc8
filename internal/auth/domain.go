// Package auth implements the pre-authentication login flow: credential
// checks against the directory and issuance of signed bearer tokens.
package auth

import "time"

// Session is an audit record of an issued credential. Token verification
// never consults these rows; they exist for operability and are purged by
// a background job once expired.
type Session struct {
	ID        string
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
	IP        string
	UserAgent string
}
