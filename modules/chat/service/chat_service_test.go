package service

import (
	"context"
	stdErrors "errors"
	"testing"
	"time"

	"classtime/core/cache"
	"classtime/core/errors"
	bookingdto "classtime/modules/booking/dto"
	"classtime/modules/chat/dto"
	"classtime/modules/chat/entity"
	tutordto "classtime/modules/tutor/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTutors struct {
	queries []string
	results map[string][]tutordto.TutorResponse
}

func (f *fakeTutors) Search(_ context.Context, query string) (*tutordto.SearchResponse, *errors.AppError) {
	if query == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Search query is required", nil)
	}
	f.queries = append(f.queries, query)
	tutors := f.results[query]
	if tutors == nil {
		tutors = []tutordto.TutorResponse{}
	}
	return &tutordto.SearchResponse{Tutors: tutors, Count: len(tutors)}, nil
}

type fakeBookings struct {
	studentID int64
}

func (f *fakeBookings) GetMyBookings(_ context.Context, studentID int64) (*bookingdto.MyBookingsResponse, *errors.AppError) {
	f.studentID = studentID
	return &bookingdto.MyBookingsResponse{
		Bookings: []bookingdto.BookingResponse{{BookingID: 5, TutorName: "Anna", Date: "2025-03-19"}},
		Count:    1,
	}, nil
}

type stubClassifier struct {
	prediction *Prediction
	err        error
}

func (s *stubClassifier) Predict(context.Context, string) (*Prediction, error) {
	return s.prediction, s.err
}

const studentID int64 = 7

func setupChat(t *testing.T, classifier Classifier) (*ChatService, *fakeTutors, *fakeBookings, *cache.MemoryCache) {
	t.Helper()
	tutors := &fakeTutors{results: map[string][]tutordto.TutorResponse{
		"Anna": {{TutorID: 1, Name: "Anna", Surname: "Ivanova", Courses: "Math"}},
		"math": {
			{TutorID: 1, Name: "Anna", Surname: "Ivanova", Courses: "Math"},
			{TutorID: 2, Name: "Boris", Surname: "Petrov", Courses: "Math"},
		},
	}}
	bookings := &fakeBookings{}
	mem := cache.NewMemoryCache()

	svc := NewChatService(classifier, NewExtractor(time.UTC), mem, tutors, bookings)
	svc.now = func() time.Time { return extractNow }
	return svc, tutors, bookings, mem
}

func storedStage(t *testing.T, mem *cache.MemoryCache) entity.Stage {
	t.Helper()
	state := &entity.DialogState{}
	err := mem.GetJSON(context.Background(), dialogKey(studentID), state)
	if stdErrors.Is(err, cache.ErrCacheMiss) {
		return entity.StageIdle
	}
	require.NoError(t, err)
	return state.Stage
}

func TestPredictIntent(t *testing.T) {
	ctx := context.Background()

	svc, _, _, _ := setupChat(t, &stubClassifier{prediction: &Prediction{Intent: entity.IntentViewBookings, Confidence: 0.91, Source: entity.SourceClassifier}})
	resp, err := svc.PredictIntent(ctx, "find a tutor")
	require.Nil(t, err)
	assert.Equal(t, entity.IntentViewBookings, resp.Intent)
	assert.Equal(t, entity.SourceClassifier, resp.Source)
	assert.Equal(t, "find a tutor", resp.Text)

	svc, _, _, _ = setupChat(t, &stubClassifier{err: stdErrors.New("connection refused")})
	resp, err = svc.PredictIntent(ctx, "find a tutor")
	require.Nil(t, err)
	assert.Equal(t, entity.IntentSearchTutor, resp.Intent)
	assert.Equal(t, 0.7, resp.Confidence)
	assert.Equal(t, entity.SourceFallback, resp.Source)

	_, err = svc.PredictIntent(ctx, "")
	require.NotNil(t, err)
	assert.Equal(t, "Text is required", err.Message)
}

func TestSearchClarificationThenQuery(t *testing.T) {
	ctx := context.Background()
	svc, tutors, _, mem := setupChat(t, nil)

	resp, err := svc.ProcessMessage(ctx, studentID, &dto.MessageRequest{Message: "Find a tutor"})
	require.Nil(t, err)
	assert.Equal(t, entity.IntentSearchTutor, resp.Intent)
	assert.True(t, resp.NeedsClarification)
	assert.Equal(t, []string{entity.MissingSearchQuery}, resp.MissingInfo)
	assert.Equal(t, "clarification", resp.Response.Type)
	assert.Equal(t, searchClarification, resp.Response.Message)
	assert.Equal(t, entity.StageSearchingTutor, storedStage(t, mem))
	assert.Empty(t, tutors.queries)
	sessionID := resp.SessionID
	require.NotEmpty(t, sessionID)

	resp, err = svc.ProcessMessage(ctx, studentID, &dto.MessageRequest{Message: "Anna"})
	require.Nil(t, err)
	assert.False(t, resp.NeedsClarification)
	assert.Equal(t, sessionID, resp.SessionID)
	assert.Equal(t, []string{"Anna"}, tutors.queries)
	require.NotNil(t, resp.Response.Tutors)
	assert.Equal(t, 1, resp.Response.Tutors.Count)
	assert.Equal(t, "Found 1 tutor(s):", resp.Response.Message)
	assert.Equal(t, string(entity.StageSelectingTutor), resp.Stage)
	assert.Equal(t, entity.StageSelectingTutor, storedStage(t, mem))
}

func TestSearchWithSubject(t *testing.T) {
	svc, tutors, _, _ := setupChat(t, nil)

	resp, err := svc.ProcessMessage(context.Background(), studentID, &dto.MessageRequest{Message: "find a math tutor"})
	require.Nil(t, err)
	assert.Equal(t, []string{"math"}, tutors.queries)
	assert.Equal(t, "action", resp.Response.Type)
	assert.Equal(t, "Searching for math tutors... Found 2 tutor(s):", resp.Response.Message)
	assert.Equal(t, "math", resp.Entities[entity.EntitySubject])
}

func TestSearchUsesRequestContext(t *testing.T) {
	svc, tutors, _, _ := setupChat(t, nil)

	resp, err := svc.ProcessMessage(context.Background(), studentID, &dto.MessageRequest{
		Message: "find a tutor",
		Context: map[string]string{"subject": "physics"},
	})
	require.Nil(t, err)
	assert.False(t, resp.NeedsClarification)
	assert.Equal(t, []string{"physics"}, tutors.queries)
	assert.Equal(t, "physics", resp.Context[entity.EntitySubject])
	assert.NotContains(t, resp.Entities, entity.EntitySubject)
}

func TestSearchWithoutResultsReturnsToIdle(t *testing.T) {
	ctx := context.Background()
	svc, _, _, mem := setupChat(t, nil)

	_, err := svc.ProcessMessage(ctx, studentID, &dto.MessageRequest{Message: "search please"})
	require.Nil(t, err)
	require.Equal(t, entity.StageSearchingTutor, storedStage(t, mem))

	resp, err := svc.ProcessMessage(ctx, studentID, &dto.MessageRequest{Message: "nobody"})
	require.Nil(t, err)
	assert.Equal(t, "No tutors found. Try a different search term.", resp.Response.Message)
	assert.Equal(t, entity.StageIdle, storedStage(t, mem))
}

func TestViewBookingsEmbedsBookings(t *testing.T) {
	svc, _, bookings, _ := setupChat(t, nil)

	resp, err := svc.ProcessMessage(context.Background(), studentID, &dto.MessageRequest{Message: "show my bookings"})
	require.Nil(t, err)
	assert.Equal(t, entity.IntentViewBookings, resp.Intent)
	assert.Equal(t, studentID, bookings.studentID)
	require.NotNil(t, resp.Response.Bookings)
	assert.Equal(t, 1, resp.Response.Bookings.Count)
	assert.Equal(t, "Showing your bookings...", resp.Response.Message)
}

func TestCancelBookingAsksWhich(t *testing.T) {
	svc, _, _, _ := setupChat(t, nil)

	resp, err := svc.ProcessMessage(context.Background(), studentID, &dto.MessageRequest{Message: "cancel my appointment tomorrow"})
	require.Nil(t, err)
	assert.Equal(t, entity.IntentCancelBooking, resp.Intent)
	assert.Equal(t, "Which booking would you like to cancel?", resp.Response.Message)
	assert.Equal(t, "2025-03-13", resp.Entities[entity.EntityDate])
	assert.Equal(t, "cancel", resp.Entities[entity.EntityAction])
	assert.NotNil(t, resp.Response.Bookings)
}

func TestGeneralIntent(t *testing.T) {
	svc, _, _, _ := setupChat(t, nil)

	resp, err := svc.ProcessMessage(context.Background(), studentID, &dto.MessageRequest{Message: "hello"})
	require.Nil(t, err)
	assert.Equal(t, entity.IntentGeneral, resp.Intent)
	assert.Equal(t, 0.5, resp.Confidence)
	assert.Equal(t, "How can I help you?", resp.Response.Message)
}

func TestMessageRequired(t *testing.T) {
	svc, _, _, _ := setupChat(t, nil)

	_, err := svc.ProcessMessage(context.Background(), studentID, &dto.MessageRequest{})
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrInvalidInput, err.Code)
	assert.Equal(t, "Message is required", err.Message)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	svc, _, _, mem := setupChat(t, nil)

	_, err := svc.ProcessMessage(ctx, studentID, &dto.MessageRequest{Message: "find a tutor"})
	require.Nil(t, err)
	require.Equal(t, entity.StageSearchingTutor, storedStage(t, mem))

	require.Nil(t, svc.Reset(ctx, studentID))
	assert.Equal(t, entity.StageIdle, storedStage(t, mem))
}
