package dto

import (
	bookingdto "classtime/modules/booking/dto"
	tutordto "classtime/modules/tutor/dto"
)

type IntentRequest struct {
	Text string `json:"text" validate:"required,notblank,max=1000"`
}

type IntentResponse struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Text       string  `json:"text"`
	Source     string  `json:"source"`
}

type MessageRequest struct {
	Message string            `json:"message" validate:"required,notblank,max=1000"`
	Context map[string]string `json:"context"`
}

// Reply is what the chat widget renders for one turn.
type Reply struct {
	Type       string                         `json:"type"`
	Intent     string                         `json:"intent,omitempty"`
	Message    string                         `json:"message"`
	Missing    []string                       `json:"missing,omitempty"`
	ActionData map[string]string              `json:"action_data,omitempty"`
	Tutors     *tutordto.SearchResponse       `json:"tutors,omitempty"`
	Bookings   *bookingdto.MyBookingsResponse `json:"bookings,omitempty"`
}

type MessageResponse struct {
	SessionID          string            `json:"session_id"`
	Intent             string            `json:"intent"`
	Confidence         float64           `json:"confidence"`
	Source             string            `json:"source"`
	Entities           map[string]string `json:"entities"`
	Context            map[string]string `json:"context"`
	MissingInfo        []string          `json:"missing_info"`
	NeedsClarification bool              `json:"needs_clarification"`
	Stage              string            `json:"stage"`
	Response           Reply             `json:"response"`
}

type ResetResponse struct {
	Stage string `json:"stage"`
}
