package gate

import "time"

// NowFunc supplies the current time for credential expiry checks.
type NowFunc func() time.Time

func (m Middleware) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
