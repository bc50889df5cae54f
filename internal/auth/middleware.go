package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the authenticated user id stored by Middleware, if any.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// Middleware rejects requests without a valid bearer token and stores the
// user id in the request context.
func Middleware(verifier TokenVerifier, onError func(w http.ResponseWriter, status int, code, message string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				onError(w, http.StatusUnauthorized, "TOKEN_INVALID", "Missing bearer token")
				return
			}

			userID, err := verifier.VerifyToken(token)
			if err != nil {
				onError(w, http.StatusUnauthorized, "TOKEN_INVALID", "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
