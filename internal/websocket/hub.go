// internal/websocket/hub.go
package websocket

import (
	"context"
	"slices"
	"sync"

	"ustaad-service/internal/domain/request"
	wstypes "ustaad-service/internal/domain/websocket"
	"ustaad-service/internal/pkg/jwt"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// TokenValidator authenticates the token presented on upgrade.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// TokenValidatorFunc adapts a function to TokenValidator.
type TokenValidatorFunc func(ctx context.Context, token string) (*jwt.Claims, error)

func (f TokenValidatorFunc) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	return f(ctx, token)
}

type Hub struct {
	// Registered clients by identity ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	stopOnce   sync.Once

	handlerRegistry *HandlerRegistry
	validator       TokenValidator
	logger          *zap.Logger
}

// BroadcastMessage targets IdentityIDs, or every client when IdentityIDs is
// nil. Role, when set, restricts delivery to clients with that role; Exclude
// skips the listed identities.
type BroadcastMessage struct {
	IdentityIDs []int64
	Role        string
	Exclude     []int64
	Channel     wstypes.ChannelType
	Message     *wstypes.WSMessage
}

func NewHub(validator TokenValidator, logger *zap.Logger) *Hub {
	return &Hub{
		clients:         make(map[int64]map[*Client]bool),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		done:            make(chan struct{}),
		handlerRegistry: NewHandlerRegistry(),
		validator:       validator,
		logger:          logger,
	}
}

// AuthenticateClient validates the token and returns the client identity.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &ClientAuth{
		IdentityID: claims.IdentityID,
		SessionID:  claims.ID,
		Role:       claims.Role,
		Device:     claims.Device,
	}, nil
}

// RegisterHandler must be called before Run.
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.Stop()
			return

		case <-h.done:
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

// Register hands client to the hub loop.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Serve registers an upgraded connection and starts its pumps.
func (h *Hub) Serve(conn *websocket.Conn, auth *ClientAuth) (*Client, error) {
	client := NewClient(h, conn, auth)
	if err := h.Register(client); err != nil {
		return nil, err
	}
	go client.WritePump()
	go client.ReadPump()
	return client, nil
}

// Unregister never blocks once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Stop closes every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()
		for _, clients := range h.clients {
			for client := range clients {
				client.Close()
			}
		}
		h.clients = make(map[int64]map[*Client]bool)
	})
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.clients[client.identityID] == nil {
		h.clients[client.identityID] = make(map[*Client]bool)
	}
	h.clients[client.identityID][client] = true
	total := h.totalClients()
	h.mu.Unlock()

	h.logger.Info("websocket client connected",
		zap.Int64("identity_id", client.identityID),
		zap.String("session_id", client.sessionID),
		zap.String("role", client.role),
		zap.Int("total", total))

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"identity_id": client.identityID,
		"session_id":  client.sessionID,
		"role":        client.role,
		"channels":    client.Channels(),
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.identityID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	client.Close()
	if len(clients) == 0 {
		delete(h.clients, client.identityID)
	}

	h.logger.Info("websocket client disconnected",
		zap.Int64("identity_id", client.identityID),
		zap.String("session_id", client.sessionID),
		zap.Int("total", h.totalClients()))
}

// BroadcastMessage delivers msg synchronously. Prefer the enqueueing helpers
// from outside the hub goroutine.
func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	deliver := func(client *Client) {
		if msg.Role != "" && client.role != msg.Role {
			return
		}
		if client.IsSubscribed(msg.Channel) {
			client.SendMessage(msg.Message)
		}
	}

	if msg.IdentityIDs == nil {
		for identityID, clients := range h.clients {
			if slices.Contains(msg.Exclude, identityID) {
				continue
			}
			for client := range clients {
				deliver(client)
			}
		}
		return
	}

	for _, identityID := range msg.IdentityIDs {
		if slices.Contains(msg.Exclude, identityID) {
			continue
		}
		for client := range h.clients[identityID] {
			deliver(client)
		}
	}
}

// enqueue drops the message when the queue is full so callers on the
// request path never block on slow sockets.
func (h *Hub) enqueue(msg *BroadcastMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message",
			zap.String("type", string(msg.Message.Type)))
	}
}

// ========== Request fan-out ==========

// NotifyUsers sends a request update to every connection of identityIDs.
func (h *Hub) NotifyUsers(identityIDs []int64, event request.EventType, r *request.ServiceRequest) {
	t, ok := wstypes.RequestEvent(event)
	if !ok || len(identityIDs) == 0 {
		return
	}
	h.enqueue(&BroadcastMessage{
		IdentityIDs: identityIDs,
		Channel:     wstypes.ChannelRequests,
		Message:     wstypes.NewMessage(t, r),
	})
}

// NotifyRole sends a request update to every client with role, except the
// request's own participants who already got it from NotifyUsers.
func (h *Hub) NotifyRole(role string, event request.EventType, r *request.ServiceRequest) {
	t, ok := wstypes.RequestEvent(event)
	if !ok {
		return
	}
	h.enqueue(&BroadcastMessage{
		Role:    role,
		Exclude: r.Participants(),
		Channel: wstypes.ChannelRequests,
		Message: wstypes.NewMessage(t, r),
	})
}

// ========== Sessions ==========

// ForceLogout tells the user's clients that a session ended. An empty
// sessionID means all of them.
func (h *Hub) ForceLogout(identityID int64, sessionID string, reason string) {
	h.enqueue(&BroadcastMessage{
		IdentityIDs: []int64{identityID},
		Channel:     wstypes.ChannelSystem,
		Message: wstypes.NewMessage(wstypes.EventTypeForceLogout, wstypes.SessionEventData{
			SessionID: sessionID,
			Reason:    reason,
			Message:   "You have been logged out",
		}),
	})
}

// DisconnectUser forcefully disconnects all sessions for a user
func (h *Hub) DisconnectUser(identityID int64, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[identityID]
	if !ok {
		return
	}
	msg := wstypes.NewMessage(wstypes.EventTypeDisconnected, map[string]interface{}{
		"reason": reason,
	})
	for client := range clients {
		client.SendMessage(msg)
		client.Close()
	}
	delete(h.clients, identityID)

	h.logger.Info("disconnected all clients",
		zap.Int64("identity_id", identityID),
		zap.String("reason", reason))
}

func (h *Hub) GetConnectedClients(identityID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[identityID])
}

func (h *Hub) IsUserConnected(identityID int64) bool {
	return h.GetConnectedClients(identityID) > 0
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

// totalClients expects h.mu held.
func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}
