package game

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Client couples a player with the channel used to talk to them. All game
// traffic flows through the client so that a broken channel is detected in
// one place and the player can be flagged as disconnected.
type Client struct {
	*Player

	logger *log.Logger
	clock  quartz.Clock

	mu         sync.Mutex
	channel    Channel
	connected  bool
	lastActive time.Time
}

// NewClient wraps a player and their channel
func NewClient(player *Player, channel Channel, clock quartz.Clock, logger *log.Logger) *Client {
	return &Client{
		Player:     player,
		logger:     logger.With("player", player.ID()),
		clock:      clock,
		channel:    channel,
		connected:  true,
		lastActive: clock.Now(),
	}
}

// Connected reports whether the client's channel is believed usable
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// LastActive returns the time of the last message received from the player
func (c *Client) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Send delivers a payload to the player. A transport failure marks the
// client disconnected but is also returned to the caller.
func (c *Client) Send(ctx context.Context, payload any) error {
	c.mu.Lock()
	ch := c.channel
	connected := c.connected
	c.mu.Unlock()

	if !connected {
		return ErrChannelClosed
	}
	if err := ch.Send(ctx, payload); err != nil {
		c.logger.Warn("send failed", "error", err)
		c.markDisconnected()
		return err
	}
	return nil
}

// Recv waits for the player's next message until the deadline. A received
// message refreshes the player's activity timestamp.
func (c *Client) Recv(ctx context.Context, deadline time.Time) (Message, error) {
	c.mu.Lock()
	ch := c.channel
	connected := c.connected
	c.mu.Unlock()

	if !connected {
		return Message{}, ErrChannelClosed
	}
	msg, err := ch.Recv(ctx, deadline)
	if err != nil {
		if err != ErrMessageTimeout {
			c.markDisconnected()
		}
		return Message{}, err
	}

	c.mu.Lock()
	c.lastActive = c.clock.Now()
	c.mu.Unlock()
	return msg, nil
}

// Ping sends a liveness probe. It reports false when the channel is broken.
func (c *Client) Ping(ctx context.Context) bool {
	type ping struct {
		MessageType string `json:"message_type"`
	}
	return c.Send(ctx, ping{MessageType: "ping"}) == nil
}

// Disconnect notifies the player and closes the channel. It is safe to call
// on an already disconnected client.
func (c *Client) Disconnect(ctx context.Context) {
	c.mu.Lock()
	ch := c.channel
	connected := c.connected
	c.connected = false
	c.mu.Unlock()

	if !connected {
		return
	}
	type disconnect struct {
		MessageType string `json:"message_type"`
	}
	if err := ch.Send(ctx, disconnect{MessageType: "disconnect"}); err != nil {
		c.logger.Debug("disconnect notice not delivered", "error", err)
	}
	if err := ch.Close(); err != nil {
		c.logger.Debug("channel close failed", "error", err)
	}
}

// UpdateChannel swaps in a fresh channel for a rejoining player. The old
// channel is closed and the client is marked connected again.
func (c *Client) UpdateChannel(channel Channel) {
	c.mu.Lock()
	old := c.channel
	c.channel = channel
	c.connected = true
	c.lastActive = c.clock.Now()
	c.mu.Unlock()

	if old != nil && old != channel {
		if err := old.Close(); err != nil {
			c.logger.Debug("stale channel close failed", "error", err)
		}
	}
}

func (c *Client) markDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}
