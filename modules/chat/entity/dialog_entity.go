package entity

import "time"

type Stage string

const (
	StageIdle           Stage = "idle"
	StageSearchingTutor Stage = "searching_tutor"
	StageSelectingTutor Stage = "selecting_tutor"
)

// DialogState is the per-student conversation state kept in the cache.
type DialogState struct {
	SessionID string            `json:"session_id"`
	Stage     Stage             `json:"stage"`
	Context   map[string]string `json:"context,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Intent names shared with the external classifier.
const (
	IntentSearchTutor   = "search_tutor"
	IntentViewBookings  = "view_bookings"
	IntentCancelBooking = "cancel_booking"
	IntentGeneral       = "general"
)

const (
	SourceClassifier = "classifier"
	SourceFallback   = "fallback"
)

// Entity keys produced by the extractor.
const (
	EntitySubject      = "subject"
	EntityTutorName    = "tutor_name"
	EntityDate         = "date"
	EntityTime         = "time"
	EntityAction       = "action"
	EntityOriginalText = "original_text"
)

const MissingSearchQuery = "search_query"
