package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerd/internal/directory"
)

func newTestServer(t *testing.T) (*Server, *directory.Memory) {
	t.Helper()
	cfg := testConfig()
	dir := directory.NewMemory()
	l := NewLobby(cfg, dir, quartz.NewReal(), testLogger())
	t.Cleanup(func() { l.Shutdown(context.Background()) })
	return New(cfg, l, dir, quartz.NewReal(), testLogger()), dir
}

func dialTestServer(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil drains messages until one of the wanted type shows up, skipping
// room updates and pings that may arrive first
func readUntil(t *testing.T, conn *websocket.Conn, messageType string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if msg["message_type"] == messageType {
			return msg
		}
	}
}

func TestResolvePlayerCreatesRecord(t *testing.T) {
	s, dir := newTestServer(t)

	player, roomID, err := s.resolvePlayer(context.Background(),
		connectRequest{MessageType: "connect", Name: "alice"})
	require.NoError(t, err)

	assert.NotEmpty(t, player.ID())
	assert.Equal(t, "alice", player.Name())
	assert.Equal(t, s.cfg.Game.BuyIn, player.Money())
	assert.Empty(t, roomID)

	rec, err := dir.Get(context.Background(), player.ID())
	require.NoError(t, err)
	assert.Equal(t, s.cfg.Game.BuyIn, rec.Money)
}

func TestResolvePlayerReturningPlayer(t *testing.T) {
	s, dir := newTestServer(t)
	rec := directory.Record{ID: "p1", Name: "alice", Money: 640, RoomID: "friends"}
	require.NoError(t, dir.Put(context.Background(), rec))

	// the stored balance and room assignment take over
	player, roomID, err := s.resolvePlayer(context.Background(),
		connectRequest{MessageType: "connect", PlayerID: "p1", Name: "someone else"})
	require.NoError(t, err)
	assert.Equal(t, "alice", player.Name())
	assert.Equal(t, 640, player.Money())
	assert.Equal(t, "friends", roomID)

	// unless the connect message names a room explicitly
	_, roomID, err = s.resolvePlayer(context.Background(),
		connectRequest{MessageType: "connect", PlayerID: "p1", Name: "alice", RoomID: "other"})
	require.NoError(t, err)
	assert.Equal(t, "other", roomID)
}

func TestHandshake(t *testing.T) {
	s, dir := newTestServer(t)
	conn := dialTestServer(t, s)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"message_type": "connect",
		"name":         "alice",
	}))

	ack := readUntil(t, conn, "connect")
	playerID := ack["player_id"].(string)
	assert.NotEmpty(t, playerID)
	assert.Equal(t, "alice", ack["player_name"])
	assert.Equal(t, float64(s.cfg.Game.BuyIn), ack["money"])
	assert.NotEmpty(t, ack["room_id"])

	rec, err := dir.Get(context.Background(), playerID)
	require.NoError(t, err)
	assert.Equal(t, ack["room_id"], rec.RoomID)
}

func TestHandshakeRejectsWrongMessageType(t *testing.T) {
	s, _ := newTestServer(t)
	conn := dialTestServer(t, s)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"message_type": "hello",
		"name":         "alice",
	}))

	reply := readUntil(t, conn, "error")
	assert.Contains(t, reply["error"], "message_type")
}

func TestHandshakeRejectsMissingName(t *testing.T) {
	s, _ := newTestServer(t)
	conn := dialTestServer(t, s)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"message_type": "connect",
	}))

	reply := readUntil(t, conn, "error")
	assert.Contains(t, reply["error"], "name")
}
