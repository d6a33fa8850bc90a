package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens map[string]string

func (s staticTokens) ValidateJWT(token string) (string, error) {
	if userID, ok := s[token]; ok {
		return userID, nil
	}
	return "", errors.New("invalid token")
}

func TestAuthMiddleware(t *testing.T) {
	var seen string
	handler := AuthMiddleware(staticTokens{"good": "u1"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, "u1", seen)
			} else {
				assert.Empty(t, seen)
				assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
			}
		})
	}
}

func TestValidateWebSocketToken(t *testing.T) {
	tokens := staticTokens{"good": "u1"}

	userID, err := ValidateWebSocketToken("good", tokens)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, err = ValidateWebSocketToken("", tokens)
	assert.Error(t, err)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	t.Cleanup(rl.Stop)

	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:3333"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111"))
}
