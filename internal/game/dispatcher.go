package game

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"
)

// Subscriber receives every event of a game. A subscriber's error is
// logged and never fails the hand or the other subscribers.
type Subscriber interface {
	GameEvent(ctx context.Context, env Envelope) error
}

// Dispatcher fans game events out to its subscribers. Delivery is
// concurrent across subscribers and Raise returns once every subscriber
// has handled the event, so a hand never runs ahead of its audience.
type Dispatcher struct {
	gameID string
	logger *log.Logger
	clock  quartz.Clock

	mu   sync.Mutex
	subs []Subscriber
}

// NewDispatcher creates a dispatcher for one game
func NewDispatcher(gameID string, clock quartz.Clock, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		gameID: gameID,
		logger: logger.With("game", gameID),
		clock:  clock,
	}
}

// Subscribe registers a subscriber
func (d *Dispatcher) Subscribe(sub Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, sub)
}

// Unsubscribe removes a previously registered subscriber
func (d *Dispatcher) Unsubscribe(sub Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.subs {
		if s == sub {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Raise delivers an event to all subscribers and waits for them
func (d *Dispatcher) Raise(ctx context.Context, event Event) {
	d.mu.Lock()
	subs := make([]Subscriber, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	env := Envelope{
		GameID:  d.gameID,
		Kind:    event.Kind(),
		Time:    d.clock.Now(),
		Payload: event,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range subs {
		g.Go(func() error {
			if err := sub.GameEvent(gctx, env); err != nil {
				d.logger.Warn("subscriber failed", "event", env.Kind, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
