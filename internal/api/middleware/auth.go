package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/response"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/auth"
)

const identityKey contextKey = "identity"

// Auth is middleware that reads the session cookie and resolves it to an
// Identity via the auth service. A missing cookie and an invalid or expired
// session both return the same 401; a session whose user was deleted after
// issuance returns 404.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token, ok := auth.ReadSessionCookie(r)
			if !ok {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated", requestID)
				return
			}

			identity, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrInvalidSession):
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated", requestID)
				case errors.Is(err, auth.ErrUserNotFound):
					response.Err(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", requestID)
				default:
					response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}
