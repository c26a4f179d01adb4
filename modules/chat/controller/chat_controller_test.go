package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"classtime/core/constants"
	"classtime/core/errors"
	"classtime/core/utils"
	"classtime/modules/chat/dto"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	text      string
	studentID int64
	req       *dto.MessageRequest
	reset     bool
}

func (s *stubChatService) PredictIntent(_ context.Context, text string) (*dto.IntentResponse, *errors.AppError) {
	s.text = text
	return &dto.IntentResponse{Intent: "general", Text: text}, nil
}

func (s *stubChatService) ProcessMessage(_ context.Context, studentID int64, req *dto.MessageRequest) (*dto.MessageResponse, *errors.AppError) {
	s.studentID, s.req = studentID, req
	return &dto.MessageResponse{Intent: "general", Stage: "idle"}, nil
}

func (s *stubChatService) Reset(_ context.Context, studentID int64) *errors.AppError {
	s.studentID, s.reset = studentID, true
	return nil
}

func newContext(target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(constants.ContextTokenData, &utils.TokenClaims{StudentID: 7, Scope: constants.ScopeTokenAccess})
	return c, rec
}

func TestMessageBindsContext(t *testing.T) {
	svc := &stubChatService{}
	c, rec := newContext("/api/v1/private/chat/message", `{"message":"  find a tutor ","context":{"subject":"math"}}`)

	require.NoError(t, NewChatController(svc).Message(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), svc.studentID)
	require.NotNil(t, svc.req)
	assert.Equal(t, "find a tutor", svc.req.Message)
	assert.Equal(t, "math", svc.req.Context["subject"])
}

func TestMessageRejectsBlank(t *testing.T) {
	svc := &stubChatService{}
	c, _ := newContext("/api/v1/private/chat/message", `{"message":"   "}`)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, NewChatController(svc).Message(c), &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Nil(t, svc.req)
}

func TestPredictIntentEndpoint(t *testing.T) {
	svc := &stubChatService{}
	c, rec := newContext("/api/v1/private/chat/intent", `{"text":"show my bookings"}`)

	require.NoError(t, NewChatController(svc).PredictIntent(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "show my bookings", svc.text)

	c, _ = newContext("/api/v1/private/chat/intent", `{}`)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, NewChatController(svc).PredictIntent(c), &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestResetEndpoint(t *testing.T) {
	svc := &stubChatService{}
	c, rec := newContext("/api/v1/private/chat/reset", "")

	require.NoError(t, NewChatController(svc).Reset(c))
	assert.True(t, svc.reset)
	assert.Contains(t, rec.Body.String(), `"stage":"idle"`)
}
