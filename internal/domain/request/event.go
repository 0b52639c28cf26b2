package request

import "time"

type EventType string

const (
	EventCreated   EventType = "request.created"
	EventAccepted  EventType = "request.accepted"
	EventRejected  EventType = "request.rejected"
	EventCancelled EventType = "request.cancelled"
)

// Event is the payload published to the request topic, keyed by request ID.
type Event struct {
	Type       EventType       `json:"type"`
	RequestID  string          `json:"request_id"`
	Status     Status          `json:"status"`
	CustomerID int64           `json:"customer_id"`
	ProviderID *int64          `json:"provider_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Request    *ServiceRequest `json:"request"`
}

func NewEvent(t EventType, r *ServiceRequest, at time.Time) Event {
	return Event{
		Type:       t,
		RequestID:  r.ID,
		Status:     r.Status,
		CustomerID: r.CustomerID,
		ProviderID: r.ProviderID,
		OccurredAt: at,
		Request:    r,
	}
}
