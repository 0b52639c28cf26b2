package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"ustaad-service/internal/domain/request"
	wstypes "ustaad-service/internal/domain/websocket"
	xerrors "ustaad-service/internal/pkg/errors"
	ws "ustaad-service/internal/websocket"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader map[string]*request.ServiceRequest

func (f fakeReader) GetRequest(_ context.Context, id string, identityID int64, role string) (*request.ServiceRequest, error) {
	if id == "explode" {
		return nil, errors.New("redis down")
	}
	r, ok := f[id]
	if !ok || !r.VisibleTo(identityID, role) {
		return nil, xerrors.ErrNotFound
	}
	return r, nil
}

func dial(t *testing.T, reader RequestReader, identityID int64, role string) *websocket.Conn {
	t.Helper()

	hub := ws.NewHub(nil, zap.NewNop())
	hub.RegisterHandler(NewRequestHandler(reader))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		id, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		_, _ = hub.Serve(conn, &ws.ClientAuth{IdentityID: id, Role: r.URL.Query().Get("role")})
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?id=" + strconv.FormatInt(identityID, 10) + "&role=" + role
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Equal(t, wstypes.EventTypeConnected, read(t, conn).Type)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) wstypes.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wstypes.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func watch(t *testing.T, conn *websocket.Conn, id string) wstypes.WSMessage {
	t.Helper()
	require.NoError(t, conn.WriteJSON(wstypes.NewMessage(wstypes.EventTypeRequestWatch, wstypes.WatchRequest{RequestID: id})))
	return read(t, conn)
}

func TestRequestHandler_Snapshot(t *testing.T) {
	reader := fakeReader{"r1": {ID: "r1", CustomerID: 10, Status: request.StatusPending}}
	conn := dial(t, reader, 10, "customer")

	msg := watch(t, conn, "r1")
	require.Equal(t, wstypes.EventTypeRequestSnapshot, msg.Type)
	data := msg.Data.(map[string]interface{})
	require.Equal(t, "r1", data["id"])
	require.Equal(t, "pending", data["status"])
}

func TestRequestHandler_NotVisible(t *testing.T) {
	reader := fakeReader{"r1": {ID: "r1", CustomerID: 10, Status: request.StatusPending}}
	conn := dial(t, reader, 11, "customer")

	msg := watch(t, conn, "r1")
	require.Equal(t, wstypes.EventTypeError, msg.Type)
	require.Equal(t, "not_found", msg.Data.(map[string]interface{})["code"])
}

func TestRequestHandler_BadInput(t *testing.T) {
	conn := dial(t, fakeReader{}, 10, "customer")

	msg := watch(t, conn, "")
	require.Equal(t, wstypes.EventTypeError, msg.Type)
	require.Equal(t, "invalid_request", msg.Data.(map[string]interface{})["code"])

	msg = watch(t, conn, "explode")
	require.Equal(t, wstypes.EventTypeError, msg.Type)
	require.Equal(t, "handler_error", msg.Data.(map[string]interface{})["code"])
}

func TestRequestHandler_SupportedEvents(t *testing.T) {
	h := NewRequestHandler(fakeReader{})
	require.Equal(t, []wstypes.EventType{wstypes.EventTypeRequestWatch}, h.SupportedEvents())

	c := ws.NewClient(ws.NewHub(nil, zap.NewNop()), nil, &ws.ClientAuth{IdentityID: 1})
	require.Error(t, h.HandleMessage(context.Background(), c, wstypes.NewMessage(wstypes.EventTypePing, nil)))
}
