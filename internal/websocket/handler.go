// internal/websocket/handler.go
package websocket

import (
	"context"
	"encoding/json"

	wstypes "ustaad-service/internal/domain/websocket"
)

// MessageHandler serves the client events of one domain.
type MessageHandler interface {
	HandleMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error
	SupportedEvents() []wstypes.EventType
}

// HandlerRegistry routes client events to handlers. It is filled before the
// hub starts and read-only afterwards.
type HandlerRegistry struct {
	handlers map[wstypes.EventType]MessageHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[wstypes.EventType]MessageHandler),
	}
}

// Register claims each of handler's events, replacing any earlier owner.
func (r *HandlerRegistry) Register(handler MessageHandler) {
	for _, eventType := range handler.SupportedEvents() {
		r.handlers[eventType] = handler
	}
}

// Dispatch reports handled=false when no handler owns msg.Type.
func (r *HandlerRegistry) Dispatch(ctx context.Context, client *Client, msg *wstypes.WSMessage) (bool, error) {
	handler, ok := r.handlers[msg.Type]
	if !ok {
		return false, nil
	}
	return true, handler.HandleMessage(ctx, client, msg)
}

// DecodeData converts a message's loosely typed Data into target.
func DecodeData(data interface{}, target interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, target)
}
