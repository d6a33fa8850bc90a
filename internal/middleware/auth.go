package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	domainerrors "pillpal-backend/internal/errors"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenValidator resolves a bearer token to a user ID
type TokenValidator interface {
	ValidateJWT(token string) (string, error)
}

// AuthMiddleware creates a middleware for JWT authentication
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authorization header required", domainerrors.CodeUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", domainerrors.CodeUnauthorized)
				return
			}

			userID, err := tokens.ValidateJWT(parts[1])
			if err != nil {
				respondError(w, "Invalid token", domainerrors.CodeUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a context carrying the authenticated user ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// ValidateWebSocketToken validates JWT token from WebSocket query parameter
func ValidateWebSocketToken(token string, tokens TokenValidator) (string, error) {
	if token == "" {
		return "", domainerrors.Unauthorized("token required")
	}
	return tokens.ValidateJWT(token)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, code domainerrors.Code) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.HTTPStatus())
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": string(code)})
}
