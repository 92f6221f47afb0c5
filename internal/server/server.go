// Package server exposes the poker service over websockets: it handshakes
// connecting players, routes them through the lobby into rooms, and owns
// the process lifecycle.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pokerd/internal/directory"
	"pokerd/internal/game"
)

const connectWait = 10 * time.Second

// connectRequest is the first message a client sends after the upgrade
type connectRequest struct {
	MessageType string `json:"message_type"`
	PlayerID    string `json:"id"`
	Name        string `json:"name"`
	RoomID      string `json:"room_id"`
}

// connectResponse acknowledges a successful connect
type connectResponse struct {
	MessageType string `json:"message_type"`
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	Money       int    `json:"money"`
	RoomID      string `json:"room_id"`
}

// Server is the websocket front of the poker service
type Server struct {
	cfg    *Config
	lobby  *Lobby
	dir    directory.Directory
	clock  quartz.Clock
	logger *log.Logger

	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// New creates a server
func New(cfg *Config, lobby *Lobby, dir directory.Directory, clock quartz.Clock, logger *log.Logger) *Server {
	return &Server{
		cfg:    cfg,
		lobby:  lobby,
		dir:    dir,
		clock:  clock,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Start listens and serves until Stop is called
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/poker", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    s.cfg.ListenAddress(),
		Handler: mux,
	}
	s.logger.Info("listening", "address", s.cfg.ListenAddress())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop drains the listener and shuts the lobby down
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.lobby.Shutdown(ctx)
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleWebSocket upgrades the connection, performs the connect
// handshake and hands the player to the lobby. The player's identity and
// balance come from the directory when known; a fresh player is stored
// with the configured buy-in.
func (s *Server) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", req.RemoteAddr, "error", err)
		return
	}

	connect, err := s.readConnect(conn)
	if err != nil {
		s.logger.Warn("handshake failed", "remote", req.RemoteAddr, "error", err)
		s.reject(conn, err)
		return
	}

	ctx := req.Context()
	player, roomID, err := s.resolvePlayer(ctx, connect)
	if err != nil {
		s.logger.Error("player resolution failed", "player", connect.PlayerID, "error", err)
		s.reject(conn, errors.New("player lookup failed"))
		return
	}

	ch := newWSChannel(conn, s.clock)
	r, client, err := s.lobby.Join(context.WithoutCancel(ctx), player, ch, roomID)
	if err != nil {
		s.logger.Warn("join refused", "player", player.ID(), "error", err)
		s.reject(conn, err)
		return
	}

	ack := connectResponse{
		MessageType: "connect",
		PlayerID:    client.ID(),
		PlayerName:  client.Name(),
		Money:       client.Money(),
		RoomID:      r.ID(),
	}
	if err := ch.Send(ctx, ack); err != nil {
		s.logger.Warn("connect ack not delivered", "player", client.ID(), "error", err)
	}
}

// readConnect reads and validates the handshake message on the raw
// connection, before the channel pumps take over.
func (s *Server) readConnect(conn *websocket.Conn) (connectRequest, error) {
	conn.SetReadDeadline(time.Now().Add(connectWait))
	defer conn.SetReadDeadline(time.Time{})

	var connect connectRequest
	if err := conn.ReadJSON(&connect); err != nil {
		return connectRequest{}, fmt.Errorf("read connect message: %w", err)
	}
	if connect.MessageType != "connect" {
		return connectRequest{}, &game.FormatError{Attribute: "message_type", Desc: "expected connect"}
	}
	if connect.Name == "" {
		return connectRequest{}, &game.FormatError{Attribute: "name", Desc: "missing player name"}
	}
	return connect, nil
}

// resolvePlayer loads or creates the player's directory record. A stored
// room assignment routes the player back to their table unless the
// connect message asks for a specific room.
func (s *Server) resolvePlayer(ctx context.Context, connect connectRequest) (*game.Player, string, error) {
	id := connect.PlayerID
	if id == "" {
		id = uuid.NewString()
	}

	rec, err := s.dir.Get(ctx, id)
	switch {
	case errors.Is(err, directory.ErrNotFound):
		rec = directory.Record{
			ID:    id,
			Name:  connect.Name,
			Money: s.cfg.Game.BuyIn,
		}
		if err := s.dir.Put(ctx, rec); err != nil {
			return nil, "", err
		}
	case err != nil:
		return nil, "", err
	}

	roomID := connect.RoomID
	if roomID == "" {
		roomID = rec.RoomID
	}
	return game.NewPlayer(rec.ID, rec.Name, rec.Money), roomID, nil
}

// reject answers a failed handshake or join before closing the socket
func (s *Server) reject(conn *websocket.Conn, cause error) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteJSON(map[string]string{
		"message_type": "error",
		"error":        cause.Error(),
	})
	conn.Close()
}
