// Package channel provides an in-process implementation of the game's
// player channel, used by bots running inside the server process and by
// tests.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"

	"pokerd/internal/game"
)

const bufferSize = 64

// Local is a pair of buffered pipes between the game and a player living
// in the same process. The game side is the game.Channel; the player side
// uses Push and Outbox.
type Local struct {
	clock quartz.Clock

	inbound  chan game.Message
	outbound chan json.RawMessage

	once sync.Once
	done chan struct{}
}

// NewLocal creates a connected local channel
func NewLocal(clock quartz.Clock) *Local {
	return &Local{
		clock:    clock,
		inbound:  make(chan game.Message, bufferSize),
		outbound: make(chan json.RawMessage, bufferSize),
		done:     make(chan struct{}),
	}
}

// Send marshals the payload and queues it for the player side
func (l *Local) Send(ctx context.Context, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	select {
	case <-l.done:
		return game.ErrChannelClosed
	default:
	}
	select {
	case l.outbound <- raw:
		return nil
	case <-l.done:
		return game.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv waits for the player side's next message until the deadline
func (l *Local) Recv(ctx context.Context, deadline time.Time) (game.Message, error) {
	wait := deadline.Sub(l.clock.Now())
	if wait <= 0 {
		return game.Message{}, game.ErrMessageTimeout
	}
	timer := l.clock.NewTimer(wait)
	defer timer.Stop()

	select {
	case msg := <-l.inbound:
		return msg, nil
	case <-timer.C:
		return game.Message{}, game.ErrMessageTimeout
	case <-l.done:
		return game.Message{}, game.ErrChannelClosed
	case <-ctx.Done():
		return game.Message{}, ctx.Err()
	}
}

// Close shuts both directions down. Safe to call more than once.
func (l *Local) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}

// Push queues a message from the player side
func (l *Local) Push(msg game.Message) error {
	select {
	case <-l.done:
		return game.ErrChannelClosed
	default:
	}
	select {
	case l.inbound <- msg:
		return nil
	case <-l.done:
		return game.ErrChannelClosed
	}
}

// Outbox exposes the payloads sent to the player side
func (l *Local) Outbox() <-chan json.RawMessage {
	return l.outbound
}

// Done is closed when the channel is shut down
func (l *Local) Done() <-chan struct{} {
	return l.done
}
