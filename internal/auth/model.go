package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	AvatarURL    *string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents a row in the sessions table. The ID is an opaque
// random token, not a UUID; it is the value carried by the session cookie.
type Session struct {
	ID        string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
}

// ProfileUpdate holds user-updatable profile fields. Nil fields are not updated.
type ProfileUpdate struct {
	DisplayName *string
	AvatarURL   *string
}
