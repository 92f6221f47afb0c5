package game

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// fakeChannel is a scriptable channel: tests queue inbound messages with
// push and inspect outbound payloads via sent.
type fakeChannel struct {
	in chan Message

	mu     sync.Mutex
	sent   []any
	closed bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{in: make(chan Message, 64)}
}

func (f *fakeChannel) push(msg Message) {
	f.in <- msg
}

func (f *fakeChannel) pushBet(bet int) {
	f.push(Message{Type: MessageTypeBet, Bet: &bet})
}

func (f *fakeChannel) sentPayloads() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeChannel) Send(_ context.Context, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrChannelClosed
	}
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeChannel) Recv(ctx context.Context, deadline time.Time) (Message, error) {
	wait := time.Until(deadline)
	if wait <= 0 {
		return Message{}, ErrMessageTimeout
	}
	select {
	case msg := <-f.in:
		return msg, nil
	case <-time.After(wait):
		return Message{}, ErrMessageTimeout
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func testLogger() *log.Logger {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)
	return logger
}

// newTestTable builds a registry of clients with fake channels
func newTestTable(t *testing.T, money map[string]int, order ...string) (*Players, map[string]*fakeChannel) {
	t.Helper()
	clock := quartz.NewReal()
	channels := make(map[string]*fakeChannel, len(order))
	clients := make([]*Client, 0, len(order))
	for _, id := range order {
		ch := newFakeChannel()
		channels[id] = ch
		clients = append(clients, NewClient(NewPlayer(id, "player "+id, money[id]), ch, clock, testLogger()))
	}
	return NewPlayers(clients), channels
}

// eventRecorder captures every dispatched envelope in order
type eventRecorder struct {
	mu   sync.Mutex
	envs []Envelope
}

func (r *eventRecorder) GameEvent(_ context.Context, env Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = append(r.envs, env)
	return nil
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]EventKind, len(r.envs))
	for i, env := range r.envs {
		kinds[i] = env.Kind
	}
	return kinds
}

func (r *eventRecorder) ofKind(kind EventKind) []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Envelope
	for _, env := range r.envs {
		if env.Kind == kind {
			out = append(out, env)
		}
	}
	return out
}

// autoResponder answers every action request on behalf of the players by
// pushing the strategy's bet into the actor's channel
type autoResponder struct {
	channels map[string]*fakeChannel
	bet      func(actor string, minBet, maxBet int) int
}

func (a *autoResponder) GameEvent(_ context.Context, env Envelope) error {
	req, ok := env.Payload.(BetActionEvent)
	if !ok {
		return nil
	}
	if ch, found := a.channels[req.Player.ID]; found {
		ch.pushBet(a.bet(req.Player.ID, req.MinBet, req.MaxBet))
	}
	return nil
}
