package websocket

import (
	"testing"

	"ustaad-service/internal/domain/request"

	"github.com/stretchr/testify/require"
)

func TestRequestEvent(t *testing.T) {
	e, ok := RequestEvent(request.EventAccepted)
	require.True(t, ok)
	require.Equal(t, EventTypeRequestAccepted, e)

	_, ok = RequestEvent("request.unknown")
	require.False(t, ok)
}

func TestMessageRoundTrip(t *testing.T) {
	data, err := NewMessage(EventTypePing, nil).ToJSON()
	require.NoError(t, err)

	msg, err := ParseMessage(data)
	require.NoError(t, err)
	require.Equal(t, EventTypePing, msg.Type)
	require.Len(t, msg.ID, 26)

	_, err = ParseMessage([]byte("{"))
	require.Error(t, err)
}
