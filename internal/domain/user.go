package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Handle       string    `json:"handle" db:"handle"`
	DisplayName  *string   `json:"display_name,omitempty" db:"display_name"`
	Email        *string   `json:"email,omitempty" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	ProfileImage *string   `json:"profile_image,omitempty" db:"profile_image"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PublicUserProfile is the view of a user safe to return to other users.
type PublicUserProfile struct {
	ID           uuid.UUID `json:"id"`
	Handle       string    `json:"handle"`
	DisplayName  *string   `json:"display_name,omitempty"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	AmFollowing  bool      `json:"am_following"`
}
