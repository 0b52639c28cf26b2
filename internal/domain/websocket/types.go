// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"ustaad-service/internal/domain/request"

	"github.com/oklog/ulid/v2"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Request events (server -> client)
	EventTypeRequestCreated   EventType = "request:created"
	EventTypeRequestAccepted  EventType = "request:accepted"
	EventTypeRequestRejected  EventType = "request:rejected"
	EventTypeRequestCancelled EventType = "request:cancelled"
	EventTypeRequestSnapshot  EventType = "request:snapshot"

	// Request events (client -> server)
	EventTypeRequestWatch EventType = "request:watch"

	// Session events
	EventTypeForceLogout EventType = "session:force_logout"

	// Subscription events
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

var requestEvents = map[request.EventType]EventType{
	request.EventCreated:   EventTypeRequestCreated,
	request.EventAccepted:  EventTypeRequestAccepted,
	request.EventRejected:  EventTypeRequestRejected,
	request.EventCancelled: EventTypeRequestCancelled,
}

// RequestEvent maps a request lifecycle event to its socket event type.
func RequestEvent(t request.EventType) (EventType, bool) {
	e, ok := requestEvents[t]
	return e, ok
}

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType              `json:"type"`
	Data      interface{}            `json:"data,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	ID        string                 `json:"id,omitempty"`
}

// Subscription channels that clients can subscribe to
type ChannelType string

const (
	ChannelRequests ChannelType = "requests"
	ChannelSystem   ChannelType = "system"
)

// DefaultChannels are joined on connect.
var DefaultChannels = []ChannelType{ChannelRequests, ChannelSystem}

type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

type UnsubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// WatchRequest asks for the current state of one request.
type WatchRequest struct {
	RequestID string `json:"request_id"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SessionEventData for session events
type SessionEventData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
