package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session binds a random identifier to a user and an expiry. The id doubles
// as the signed payload carried in the SESSION_ID cookie; the fingerprint
// scopes one live session per distinct client through the
// (user_id, fingerprint) unique key.
type Session struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Fingerprint string    `json:"-" db:"fingerprint"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the session is past its expiry. Expired rows are
// treated as absent by the auth middleware even while still in the table.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
