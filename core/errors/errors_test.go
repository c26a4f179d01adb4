package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrInvalidInput:               http.StatusBadRequest,
		ErrMissingAuthorizationHeader: http.StatusUnauthorized,
		ErrTokenExpired:               http.StatusUnauthorized,
		ErrForbidden:                  http.StatusForbidden,
		ErrNotFound:                   http.StatusNotFound,
		ErrConflict:                   http.StatusConflict,
		ErrAlreadyExists:              http.StatusConflict,
		ErrTooManyRequests:            http.StatusTooManyRequests,
		ErrUpstreamUnavailable:        http.StatusBadGateway,
		ErrInternalServer:             http.StatusInternalServerError,
		ErrorCode("SOMETHING_ELSE"):   http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), code)
	}
}

func TestAsUnwrapsWrappedAppError(t *testing.T) {
	cause := stderrors.New("db down")
	appErr := NewAppError(ErrInternalServer, "failed to load", cause)
	wrapped := fmt.Errorf("loading: %w", appErr)

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrInternalServer, got.Code)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, appErr.Error(), "db down")

	_, ok = As(cause)
	assert.False(t, ok)
}
