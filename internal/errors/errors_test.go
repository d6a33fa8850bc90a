package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	err := NotFoundf("medication %s not found", "abc")
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))

	wrapped := fmt.Errorf("service: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestWrap_KeepsCause(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, CodeUnavailable, "database unreachable")
	assert.True(t, Is(err, io.ErrUnexpectedEOF))
	assert.Contains(t, err.Error(), "database unreachable")
	assert.Contains(t, err.Error(), io.ErrUnexpectedEOF.Error())
}

func TestIsDomain(t *testing.T) {
	assert.True(t, IsDomain(NotFound("missing")))
	assert.True(t, IsDomain(fmt.Errorf("wrapped: %w", Validation("bad"))))
	assert.False(t, IsDomain(Internal("boom")))
	assert.False(t, IsDomain(Wrap(io.EOF, CodeUnavailable, "down")))
	assert.False(t, IsDomain(io.EOF))
}

func TestValidationWithDetails(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{"name": "is required"})
	var e *Error
	require.True(t, As(err, &e))
	assert.Equal(t, CodeValidation, e.Code)
	assert.Equal(t, map[string]string{"name": "is required"}, e.Details)
}
