package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const dialTimeout = 10 * time.Second

// serverMessage is the superset of fields a bot cares about across the
// server's message types
type serverMessage struct {
	MessageType string `json:"message_type"`
	Event       string `json:"event"`
	Error       string `json:"error"`
	PlayerID    string `json:"player_id"`
	MinBet      int    `json:"min_bet"`
	MaxBet      int    `json:"max_bet"`
	Player      struct {
		ID    string `json:"id"`
		Money int    `json:"money"`
	} `json:"player"`
	Score struct {
		Category int `json:"category"`
	} `json:"score"`
}

// Client is one bot connection. It joins the lobby like any other player
// and answers action requests with its strategy's bets.
type Client struct {
	url      string
	name     string
	roomID   string
	strategy Strategy
	logger   *log.Logger

	playerID string
	category int
	money    int
}

// NewClient creates a bot client for the given server url
func NewClient(url, name, roomID string, strategy Strategy, logger *log.Logger) *Client {
	return &Client{
		url:      url,
		name:     name,
		roomID:   roomID,
		strategy: strategy,
		logger:   logger.WithPrefix("bot").With("name", name),
	}
}

// Run connects and plays until the server disconnects the bot or the
// context is cancelled
func (c *Client) Run(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(map[string]string{
		"message_type": "connect",
		"name":         c.name,
		"room_id":      c.roomID,
	}); err != nil {
		return fmt.Errorf("send connect: %w", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("undecodable message", "error", err)
			continue
		}
		if done, err := c.handle(conn, msg); done {
			return err
		}
	}
}

func (c *Client) handle(conn *websocket.Conn, msg serverMessage) (bool, error) {
	switch msg.MessageType {
	case "connect":
		c.playerID = msg.PlayerID
		c.logger.Info("connected", "player", c.playerID)
	case "disconnect":
		c.logger.Info("disconnected by server")
		return true, nil
	case "error":
		c.logger.Warn("server error", "error", msg.Error)
	case "game-update":
		return c.handleGameUpdate(conn, msg)
	}
	return false, nil
}

func (c *Client) handleGameUpdate(conn *websocket.Conn, msg serverMessage) (bool, error) {
	switch msg.Event {
	case "cards-assignment":
		c.category = msg.Score.Category
	case "player-action":
		if msg.Player.ID != c.playerID {
			return false, nil
		}
		c.money = msg.Player.Money
		bet := c.strategy.Bet(Situation{
			MinBet:   msg.MinBet,
			MaxBet:   msg.MaxBet,
			Category: c.category,
			Money:    c.money,
		})
		c.logger.Debug("acting", "bet", bet, "min", msg.MinBet, "max", msg.MaxBet)
		if err := conn.WriteJSON(map[string]any{
			"message_type": "bet",
			"bet":          bet,
		}); err != nil {
			return true, fmt.Errorf("send bet: %w", err)
		}
	}
	return false, nil
}
