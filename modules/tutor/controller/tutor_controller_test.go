package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"classtime/core/constants"
	basecontroller "classtime/core/controller"
	"classtime/core/errors"
	"classtime/core/utils"
	"classtime/modules/tutor/dto"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTutorService struct {
	query   string
	tutorID int64
	date    string
	month   int
	year    int
	filter  *int64
}

func (s *stubTutorService) Search(_ context.Context, query string) (*dto.SearchResponse, *errors.AppError) {
	s.query = query
	return &dto.SearchResponse{Tutors: []dto.TutorResponse{}}, nil
}

func (s *stubTutorService) Dates(_ context.Context, tutorID int64) ([]dto.AvailableDateResponse, *errors.AppError) {
	s.tutorID = tutorID
	return []dto.AvailableDateResponse{{Date: "2025-03-19", AvailableSlots: 2}}, nil
}

func (s *stubTutorService) Timeslots(_ context.Context, tutorID int64, date string) ([]dto.TimeslotResponse, *errors.AppError) {
	s.tutorID, s.date = tutorID, date
	if date == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Date parameter is required", nil)
	}
	if _, ok := utils.ParseDate(date, time.UTC); !ok {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid date format. Use YYYY-MM-DD", nil)
	}
	return []dto.TimeslotResponse{}, nil
}

func (s *stubTutorService) MonthCalendar(_ context.Context, _ int64, month, year int, tutorID *int64) (*dto.MonthCalendarResponse, *errors.AppError) {
	s.month, s.year, s.filter = month, year, tutorID
	if month < 0 || month > 12 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Month must be between 1 and 12", nil)
	}
	return &dto.MonthCalendarResponse{}, nil
}

func (s *stubTutorService) WeekCalendar(_ context.Context, _ int64, date string, tutorID *int64) (*dto.WeekCalendarResponse, *errors.AppError) {
	s.date, s.filter = date, tutorID
	return &dto.WeekCalendarResponse{}, nil
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(constants.ContextTokenData, &utils.TokenClaims{StudentID: 7, Scope: constants.ScopeTokenAccess})
	return c, rec
}

func requireBadRequest(t *testing.T, err error, message string) {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	body, ok := httpErr.Message.(*basecontroller.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, errors.ErrInvalidInput, body.Code)
	assert.Equal(t, message, body.Message)
}

func TestSearchTrimsQuery(t *testing.T) {
	svc := &stubTutorService{}
	ctrl := NewTutorController(svc)

	c, rec := newContext(http.MethodPost, "/api/v1/private/tutors/search", `{"query":"  math "}`)
	require.NoError(t, ctrl.Search(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "math", svc.query)

	c, _ = newContext(http.MethodPost, "/api/v1/private/tutors/search", `{"query":"   "}`)
	requireBadRequest(t, ctrl.Search(c), "Search query is required")
}

func TestTimeslotsDateQuery(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		query   string
		message string
	}{
		{"valid", "3", "?date=2025-03-19", ""},
		{"missing date", "3", "", "Date parameter is required"},
		{"bad date", "3", "?date=19.03.2025", "Invalid date format. Use YYYY-MM-DD"},
		{"bad tutor id", "x", "?date=2025-03-19", "Invalid tutor id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubTutorService{}
			c, rec := newContext(http.MethodGet, "/api/v1/private/tutors/"+tt.id+"/timeslots"+tt.query, "")
			c.SetParamNames("id")
			c.SetParamValues(tt.id)

			err := NewTutorController(svc).Timeslots(c)
			if tt.message != "" {
				requireBadRequest(t, err, tt.message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, int64(3), svc.tutorID)
			assert.Equal(t, "2025-03-19", svc.date)
		})
	}
}

func TestDatesParsesTutorID(t *testing.T) {
	svc := &stubTutorService{}
	c, rec := newContext(http.MethodGet, "/api/v1/private/tutors/4/dates", "")
	c.SetParamNames("id")
	c.SetParamValues("4")

	require.NoError(t, NewTutorController(svc).Dates(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), svc.tutorID)
	assert.Contains(t, rec.Body.String(), `"available_slots":2`)
}

func TestMonthCalendarQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
		month   int
		year    int
		filter  int64
	}{
		{"defaults", "", "", 0, 0, 0},
		{"explicit", "?month=4&year=2025&tutor_id=2", "", 4, 2025, 2},
		{"month not a number", "?month=april", "Invalid month or year", 0, 0, 0},
		{"year not a number", "?month=4&year=20x5", "Invalid month or year", 0, 0, 0},
		{"month out of range", "?month=13&year=2025", "Month must be between 1 and 12", 0, 0, 0},
		{"bad tutor filter", "?tutor_id=0", "Invalid tutor_id", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubTutorService{}
			c, rec := newContext(http.MethodGet, "/api/v1/private/calendar"+tt.query, "")

			err := NewTutorController(svc).MonthCalendar(c)
			if tt.message != "" {
				requireBadRequest(t, err, tt.message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.month, svc.month)
			assert.Equal(t, tt.year, svc.year)
			if tt.filter == 0 {
				assert.Nil(t, svc.filter)
			} else {
				require.NotNil(t, svc.filter)
				assert.Equal(t, tt.filter, *svc.filter)
			}
		})
	}
}

func TestWeekCalendarPassesDate(t *testing.T) {
	svc := &stubTutorService{}
	c, rec := newContext(http.MethodGet, "/api/v1/private/calendar/week?date=2025-03-12&tutor_id=1", "")

	require.NoError(t, NewTutorController(svc).WeekCalendar(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-12", svc.date)
	require.NotNil(t, svc.filter)
	assert.Equal(t, int64(1), *svc.filter)
}

func TestCalendarRequiresSession(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/private/calendar", nil), httptest.NewRecorder())

	var httpErr *echo.HTTPError
	require.ErrorAs(t, NewTutorController(&stubTutorService{}).MonthCalendar(c), &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
