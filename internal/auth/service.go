package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned when sign-in fails. An unknown email
// and a wrong password produce the same error so callers cannot enumerate
// registered accounts.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidSession is returned when a session token does not resolve to a
// live session.
var ErrInvalidSession = errors.New("invalid or expired session")

// Service provides authentication operations. It never touches cookies;
// binding a minted session to the transport is the caller's job, which
// keeps the authentication decision testable without HTTP.
type Service struct {
	users      UserRepository
	sessions   SessionRepository
	bcryptCost int
	sessionTTL time.Duration
}

// NewService creates a new auth Service.
func NewService(users UserRepository, sessions SessionRepository, bcryptCost int, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		bcryptCost: bcryptCost,
		sessionTTL: sessionTTL,
	}
}

// SessionTTL returns the configured session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// NewSessionToken generates an opaque session token: 32 random bytes,
// base64url-encoded.
func NewSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SignUp creates a new user with a bcrypt-hashed password.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return u, nil
}

// SignIn verifies email+password and on success mints a new session with
// the configured TTL. Returns the user and the raw session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := NewSessionToken()
	if err != nil {
		return nil, "", err
	}

	sess := &Session{
		ID:        token,
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("creating session: %w", err)
	}

	return u, token, nil
}

// SignOut deletes the session for the given token. Idempotent: signing out
// an absent or expired session is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// SignOutAll deletes every session held by a user.
func (s *Service) SignOutAll(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.DeleteByUser(ctx, userID)
}

// Authenticate resolves a session token to an Identity. A missing or
// expired session yields ErrInvalidSession; a session whose user row was
// deleted after issuance yields ErrUserNotFound.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	// Expiry is enforced at read time, never by background eviction.
	if !time.Now().Before(sess.ExpiresAt) {
		return nil, ErrInvalidSession
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolving session user: %w", err)
	}

	return &Identity{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}, nil
}
