// internal/websocket/handler/requests.go
package handler

import (
	"context"
	"fmt"
	"strings"

	"ustaad-service/internal/domain/request"
	wstypes "ustaad-service/internal/domain/websocket"
	xerrors "ustaad-service/internal/pkg/errors"
	ws "ustaad-service/internal/websocket"
)

// RequestReader returns a request only if the caller may see it.
type RequestReader interface {
	GetRequest(ctx context.Context, id string, identityID int64, role string) (*request.ServiceRequest, error)
}

// RequestHandler answers request:watch with a request:snapshot. Further
// changes arrive on the requests channel.
type RequestHandler struct {
	requests RequestReader
}

func NewRequestHandler(requests RequestReader) *RequestHandler {
	return &RequestHandler{requests: requests}
}

func (h *RequestHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{wstypes.EventTypeRequestWatch}
}

func (h *RequestHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	if msg.Type != wstypes.EventTypeRequestWatch {
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}

	var req wstypes.WatchRequest
	if err := ws.DecodeData(msg.Data, &req); err != nil || strings.TrimSpace(req.RequestID) == "" {
		client.SendError("invalid_request", "request_id is required", "")
		return nil
	}

	r, err := h.requests.GetRequest(ctx, req.RequestID, client.GetIdentityID(), client.GetRole())
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			client.SendError("not_found", request.MsgUnavailable, req.RequestID)
			return nil
		}
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeRequestSnapshot, r))
	return nil
}
