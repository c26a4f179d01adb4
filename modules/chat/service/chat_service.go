package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strconv"
	"time"

	"classtime/core/cache"
	"classtime/core/constants"
	"classtime/core/errors"
	"classtime/core/logger"
	"classtime/core/metrics"
	"classtime/core/utils"
	bookingdto "classtime/modules/booking/dto"
	"classtime/modules/chat/dto"
	"classtime/modules/chat/entity"
	tutordto "classtime/modules/tutor/dto"
)

const searchClarification = "What would you like to search for? You can specify a subject (like 'math' or 'english') or a tutor's name."

// TutorSearcher is the slice of the tutor service the chat needs.
type TutorSearcher interface {
	Search(ctx context.Context, query string) (*tutordto.SearchResponse, *errors.AppError)
}

// BookingLister is the slice of the booking service the chat needs.
type BookingLister interface {
	GetMyBookings(ctx context.Context, studentID int64) (*bookingdto.MyBookingsResponse, *errors.AppError)
}

type ChatServiceInterface interface {
	PredictIntent(ctx context.Context, text string) (*dto.IntentResponse, *errors.AppError)
	ProcessMessage(ctx context.Context, studentID int64, req *dto.MessageRequest) (*dto.MessageResponse, *errors.AppError)
	Reset(ctx context.Context, studentID int64) *errors.AppError
}

type ChatService struct {
	classifier Classifier
	extractor  *Extractor
	cache      cache.Cache
	tutors     TutorSearcher
	bookings   BookingLister
	now        func() time.Time
}

// NewChatService wires the dialog manager. A nil classifier means every
// prediction uses the keyword fallback.
func NewChatService(classifier Classifier, extractor *Extractor, cache cache.Cache, tutors TutorSearcher, bookings BookingLister) *ChatService {
	return &ChatService{
		classifier: classifier,
		extractor:  extractor,
		cache:      cache,
		tutors:     tutors,
		bookings:   bookings,
		now:        time.Now,
	}
}

func dialogKey(studentID int64) string {
	return constants.RedisKeyDialogState + strconv.FormatInt(studentID, 10)
}

func (service *ChatService) classify(ctx context.Context, text string) *Prediction {
	prediction := FallbackIntent(text)
	if service.classifier != nil {
		predicted, err := service.classifier.Predict(ctx, text)
		if err != nil {
			logger.Warn("Chat:Classify:Fallback", "error", err)
		} else {
			prediction = predicted
		}
	}
	metrics.IntentPredictionsTotal.WithLabelValues(prediction.Source, prediction.Intent).Inc()
	return prediction
}

func (service *ChatService) PredictIntent(ctx context.Context, text string) (*dto.IntentResponse, *errors.AppError) {
	if text == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Text is required", nil)
	}

	prediction := service.classify(ctx, text)
	return &dto.IntentResponse{
		Intent:     prediction.Intent,
		Confidence: prediction.Confidence,
		Text:       text,
		Source:     prediction.Source,
	}, nil
}

func (service *ChatService) loadState(ctx context.Context, studentID int64) *entity.DialogState {
	state := &entity.DialogState{}
	err := service.cache.GetJSON(ctx, dialogKey(studentID), state)
	if err != nil {
		if !stdErrors.Is(err, cache.ErrCacheMiss) {
			logger.Warn("Chat:LoadState:Error", "student_id", studentID, "error", err)
		}
		return &entity.DialogState{Stage: entity.StageIdle}
	}
	if state.Stage == "" {
		state.Stage = entity.StageIdle
	}
	return state
}

func (service *ChatService) saveState(ctx context.Context, studentID int64, state *entity.DialogState) {
	key := dialogKey(studentID)
	var err error
	if state.Stage == entity.StageIdle {
		err = service.cache.Del(ctx, key)
	} else {
		state.UpdatedAt = service.now()
		err = service.cache.SetJSON(ctx, key, state, constants.DialogStateTTL)
	}
	if err != nil {
		logger.Warn("Chat:SaveState:Error", "student_id", studentID, "stage", state.Stage, "error", err)
	}
}

func mergeContext(layers ...map[string]string) map[string]string {
	merged := map[string]string{}
	for _, layer := range layers {
		for k, v := range layer {
			if v != "" {
				merged[k] = v
			}
		}
	}
	return merged
}

func missingInfo(intent string, ctx map[string]string) []string {
	missing := []string{}
	if intent == entity.IntentSearchTutor && ctx[entity.EntitySubject] == "" && ctx[entity.EntityTutorName] == "" {
		missing = append(missing, entity.MissingSearchQuery)
	}
	return missing
}

func (service *ChatService) ProcessMessage(ctx context.Context, studentID int64, req *dto.MessageRequest) (*dto.MessageResponse, *errors.AppError) {
	if req.Message == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Message is required", nil)
	}

	state := service.loadState(ctx, studentID)
	if state.SessionID == "" {
		state.SessionID = utils.GenerateID()
	}
	entities := service.extractor.Extract(req.Message, service.now())

	// A message sent while the bot waits for a search query is the query itself.
	if state.Stage == entity.StageSearchingTutor {
		merged := mergeContext(state.Context, req.Context, entities)
		resp := &dto.MessageResponse{
			SessionID:   state.SessionID,
			Intent:      entity.IntentSearchTutor,
			Confidence:  1,
			Source:      entity.SourceFallback,
			Entities:    entities,
			Context:     merged,
			MissingInfo: []string{},
		}
		reply, next, appErr := service.searchTutors(ctx, req.Message)
		if appErr != nil {
			return nil, appErr
		}
		resp.Response = *reply
		state.Stage, state.Context = next, merged
		service.saveState(ctx, studentID, state)
		resp.Stage = string(state.Stage)
		return resp, nil
	}

	prediction := service.classify(ctx, req.Message)
	merged := mergeContext(state.Context, req.Context, entities)
	missing := missingInfo(prediction.Intent, merged)

	resp := &dto.MessageResponse{
		SessionID:          state.SessionID,
		Intent:             prediction.Intent,
		Confidence:         prediction.Confidence,
		Source:             prediction.Source,
		Entities:           entities,
		Context:            merged,
		MissingInfo:        missing,
		NeedsClarification: len(missing) > 0,
	}

	next := entity.StageIdle
	switch {
	case len(missing) > 0:
		resp.Response = clarification(missing)
		if prediction.Intent == entity.IntentSearchTutor {
			next = entity.StageSearchingTutor
		}

	case prediction.Intent == entity.IntentSearchTutor:
		query := merged[entity.EntitySubject]
		if query == "" {
			query = merged[entity.EntityTutorName]
		}
		reply, stage, appErr := service.searchTutors(ctx, query)
		if appErr != nil {
			return nil, appErr
		}
		reply.Message = searchMessage(merged) + " " + reply.Message
		resp.Response, next = *reply, stage

	case prediction.Intent == entity.IntentViewBookings || prediction.Intent == entity.IntentCancelBooking:
		bookings, appErr := service.bookings.GetMyBookings(ctx, studentID)
		if appErr != nil {
			return nil, appErr
		}
		resp.Response = dto.Reply{
			Type:       "action",
			Intent:     prediction.Intent,
			Message:    bookingsMessage(prediction.Intent, merged),
			ActionData: merged,
			Bookings:   bookings,
		}

	default:
		resp.Response = dto.Reply{
			Type:       "action",
			Intent:     prediction.Intent,
			Message:    "How can I help you?",
			ActionData: merged,
		}
	}

	state.Stage = next
	state.Context = merged
	service.saveState(ctx, studentID, state)
	resp.Stage = string(state.Stage)

	logger.Info("Chat:ProcessMessage:Success", "student_id", studentID, "intent", prediction.Intent, "source", prediction.Source, "stage", next)
	return resp, nil
}

func (service *ChatService) searchTutors(ctx context.Context, query string) (*dto.Reply, entity.Stage, *errors.AppError) {
	result, appErr := service.tutors.Search(ctx, query)
	if appErr != nil {
		if appErr.Code == errors.ErrInvalidInput {
			reply := clarification([]string{entity.MissingSearchQuery})
			return &reply, entity.StageSearchingTutor, nil
		}
		return nil, entity.StageIdle, appErr
	}

	if result.Count == 0 {
		return &dto.Reply{
			Type:    "action",
			Intent:  entity.IntentSearchTutor,
			Message: "No tutors found. Try a different search term.",
			Tutors:  result,
		}, entity.StageIdle, nil
	}

	return &dto.Reply{
		Type:    "action",
		Intent:  entity.IntentSearchTutor,
		Message: fmt.Sprintf("Found %d tutor(s):", result.Count),
		Tutors:  result,
	}, entity.StageSelectingTutor, nil
}

func clarification(missing []string) dto.Reply {
	message := "I need more information. Could you please provide more details?"
	for _, m := range missing {
		if m == entity.MissingSearchQuery {
			message = searchClarification
		}
	}
	return dto.Reply{Type: "clarification", Message: message, Missing: missing}
}

func searchMessage(ctx map[string]string) string {
	switch {
	case ctx[entity.EntitySubject] != "":
		return fmt.Sprintf("Searching for %s tutors...", ctx[entity.EntitySubject])
	case ctx[entity.EntityTutorName] != "":
		return fmt.Sprintf("Searching for %s...", ctx[entity.EntityTutorName])
	}
	return "Searching for tutors..."
}

func bookingsMessage(intent string, ctx map[string]string) string {
	if intent == entity.IntentCancelBooking {
		return "Which booking would you like to cancel?"
	}
	switch {
	case ctx[entity.EntityDate] != "":
		return fmt.Sprintf("Showing your bookings for %s...", ctx[entity.EntityDate])
	case ctx[entity.EntityTutorName] != "":
		return fmt.Sprintf("Showing your bookings with %s...", ctx[entity.EntityTutorName])
	}
	return "Showing your bookings..."
}

func (service *ChatService) Reset(ctx context.Context, studentID int64) *errors.AppError {
	if err := service.cache.Del(ctx, dialogKey(studentID)); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to reset chat", err)
	}
	return nil
}
