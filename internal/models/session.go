package models

import "time"

type Session struct {
	Token   string    // Random session token
	UserID  int       // Session owner
	Expires time.Time // Expiry
	Created time.Time // Creation time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.Expires)
}
