package events

import (
	"time"

	"github.com/spec-kit/service-marketplace/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestSubmitted     EventType = "request_submitted"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestCanceled      EventType = "request_canceled"
	EventUserRegistered       EventType = "user_registered"
	EventPINReset             EventType = "pin_reset"
)

// AllEventTypes lists every type a subscriber may want to fan out.
var AllEventTypes = []EventType{
	EventRequestSubmitted,
	EventRequestStatusChanged,
	EventRequestCanceled,
	EventUserRegistered,
	EventPINReset,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Telephone string      `json:"telephone,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	ServiceName   string `json:"service_name"`
	RequesterName string `json:"requester_name"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	NewStatus domain.RequestStatus `json:"new_status"`
}

// RequestCanceledPayload payload.
type RequestCanceledPayload struct {
	ServiceName string               `json:"service_name"`
	Status      domain.RequestStatus `json:"status"`
	Deleted     int                  `json:"deleted"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Name string `json:"name"`
}
