package controller

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"classtime/core/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMapping(t *testing.T) {
	base := NewBaseController()

	httpErr := base.AppError(errors.NewAppError(errors.ErrConflict, "Timeslot is no longer available", nil))
	assert.Equal(t, http.StatusConflict, httpErr.Code)

	body, ok := httpErr.Message.(*ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, errors.ErrConflict, body.Code)
	assert.Equal(t, "Timeslot is no longer available", body.Message)

	httpErr = base.AppError(nil)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
}

func TestErrorDetailsHideInternalErrors(t *testing.T) {
	base := NewBaseController()

	httpErr := base.InternalServerError(errors.ErrInternalServer, "failed", stderrors.New("pq: connection refused"))
	body := httpErr.Message.(*ErrorResponse)
	assert.Nil(t, body.Details)

	httpErr = base.BadRequest(errors.ErrInvalidInput, "Invalid request data", map[string]string{"field": "email"})
	body = httpErr.Message.(*ErrorResponse)
	assert.Equal(t, map[string]string{"field": "email"}, body.Details)
}

func TestErrorResponseWritesStatus(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := NewBaseController().ErrorResponse(c, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Booking not found"`)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, NewBaseController().ErrorResponse(c, stderrors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}
