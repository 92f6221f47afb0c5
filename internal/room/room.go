// Package room manages poker tables: seating, the hand loop with its
// rotating dealer, and fan-out of game events to the seated players.
package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"pokerd/internal/game"
)

// Game is one playable hand series over a fixed set of players
type Game interface {
	PlayHand(ctx context.Context, dealerID string) error
	Dispatcher() *game.Dispatcher
}

// GameFactory builds a fresh game for the room's current players
type GameFactory func(players []*game.Client) Game

// Room is a table with a fixed number of seats. While active it plays
// hand after hand, advancing the dealer one occupied seat per hand, and
// relays every game event to the seated players. Events since the start
// of the current hand are kept in a backlog so a rejoining player can
// catch up mid-hand.
type Room struct {
	id          string
	private     bool
	factory     GameFactory
	clock       quartz.Clock
	logger      *log.Logger
	idleTimeout time.Duration
	onLeave     func(ctx context.Context, client *game.Client)

	mu      sync.Mutex
	seats   *Seats
	backlog []game.Envelope
	active  bool
	pending int
}

// New creates a room. idleTimeout bounds how long a silent player keeps
// their seat between hands; zero disables the check. onLeave, when set,
// observes every player leaving the room, eviction included.
func New(id string, private bool, size int, factory GameFactory, idleTimeout time.Duration, onLeave func(ctx context.Context, client *game.Client), clock quartz.Clock, logger *log.Logger) *Room {
	return &Room{
		id:          id,
		private:     private,
		factory:     factory,
		clock:       clock,
		logger:      logger.WithPrefix("room").With("room", id),
		idleTimeout: idleTimeout,
		onLeave:     onLeave,
		seats:       NewSeats(size),
	}
}

// ID returns the room id
func (r *Room) ID() string {
	return r.id
}

// Private reports whether the room is joinable by id only
func (r *Room) Private() bool {
	return r.private
}

// Active reports whether the room's hand loop is running
func (r *Room) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// PlayerCount returns the number of seated players
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seats.Count()
}

// Full reports whether every seat is taken
func (r *Room) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seats.Full()
}

// Reserve holds the room for a player who was handed it but has not
// taken a seat yet. A reserved room must not be discarded even while it
// counts zero players. Pair every Reserve with a Release once the join
// attempt finishes.
func (r *Room) Reserve() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending++
}

// Release drops a reservation taken with Reserve
func (r *Room) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending > 0 {
		r.pending--
	}
}

// Reserved reports whether any join attempt is still in flight
func (r *Room) Reserved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending > 0
}

// Players returns the seated clients in seat order
func (r *Room) Players() []*game.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seats.Players()
}

// Join seats a player, or reattaches a rejoining player to their existing
// seat. A rejoin swaps the fresh channel into the seated client and
// replays the current hand's event backlog so the player catches up.
func (r *Room) Join(ctx context.Context, player *game.Player, ch game.Channel) (*game.Client, error) {
	r.mu.Lock()
	if existing, ok := r.seats.Get(player.ID()); ok {
		existing.UpdateChannel(ch)
		backlog := make([]game.Envelope, len(r.backlog))
		copy(backlog, r.backlog)
		r.mu.Unlock()

		r.logger.Info("player rejoined", "player", player.ID())
		r.broadcastRoomUpdate(ctx, "player-added", player.ID())
		for _, env := range backlog {
			if target := env.Target(); target != "" && target != player.ID() {
				continue
			}
			if err := existing.Send(ctx, env); err != nil {
				break
			}
		}
		return existing, nil
	}

	client := game.NewClient(player, ch, r.clock, r.logger)
	if err := r.seats.Add(client); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	r.logger.Info("player joined", "player", player.ID())
	r.broadcastRoomUpdate(ctx, "player-added", player.ID())
	return client, nil
}

// Leave frees the player's seat and closes their channel
func (r *Room) Leave(ctx context.Context, playerID string) error {
	r.mu.Lock()
	client, ok := r.seats.Get(playerID)
	if !ok {
		r.mu.Unlock()
		return ErrUnknownPlayer
	}
	_ = r.seats.Remove(playerID)
	r.mu.Unlock()

	client.Disconnect(ctx)
	if r.onLeave != nil {
		r.onLeave(ctx, client)
	}
	r.logger.Info("player left", "player", playerID)
	r.broadcastRoomUpdate(ctx, "player-removed", playerID)
	return nil
}

// Close evicts every player with a disconnect notice
func (r *Room) Close(ctx context.Context) {
	r.mu.Lock()
	players := r.seats.Players()
	for _, c := range players {
		_ = r.seats.Remove(c.ID())
	}
	r.mu.Unlock()

	for _, c := range players {
		c.Disconnect(ctx)
		if r.onLeave != nil {
			r.onLeave(ctx, c)
		}
	}
	r.logger.Info("room closed", "evicted", len(players))
}

// GameEvent implements game.Subscriber. Broadcast events go to every
// seated player, targeted events only to their addressee. Events
// accumulate in the backlog until the hand's game-over clears it. A
// dead-player event evicts that player from the room.
func (r *Room) GameEvent(ctx context.Context, env game.Envelope) error {
	r.mu.Lock()
	if env.Kind == game.EventGameOver {
		r.backlog = nil
	} else {
		r.backlog = append(r.backlog, env)
	}
	players := r.seats.Players()
	r.mu.Unlock()

	if target := env.Target(); target != "" {
		for _, c := range players {
			if c.ID() == target {
				return c.Send(ctx, env)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range players {
		g.Go(func() error {
			if err := c.Send(gctx, env); err != nil {
				r.logger.Debug("event not delivered", "player", c.ID(), "event", env.Kind)
			}
			return nil
		})
	}
	_ = g.Wait()

	if dead, ok := env.Payload.(game.DeadPlayerEvent); ok {
		if err := r.Leave(ctx, dead.Player.ID); err != nil && !errors.Is(err, ErrUnknownPlayer) {
			return err
		}
	}
	return nil
}

// Activate runs the hand loop until fewer than two responsive players
// remain or the context is cancelled. It returns immediately when the
// room is already active.
func (r *Room) Activate(ctx context.Context) {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return
	}
	r.active = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
		r.logger.Info("room deactivated")
	}()
	r.logger.Info("room activated")

	dealerSeat := -1
	for ctx.Err() == nil {
		r.removeUnresponsive(ctx)
		players := r.Players()
		if len(players) < 2 {
			return
		}
		dealerSeat = (dealerSeat + 1) % len(players)

		g := r.factory(players)
		g.Dispatcher().Subscribe(r)
		err := g.PlayHand(ctx, players[dealerSeat].ID())
		g.Dispatcher().Unsubscribe(r)

		switch {
		case err == nil:
		case errors.Is(err, game.ErrNotEnoughPlayers):
			// removed players were already evicted via their dead-player
			// events; the next iteration re-checks the head count
		default:
			r.logger.Error("hand aborted", "error", err)
			return
		}
	}
}

// removeUnresponsive pings every player concurrently and evicts the
// unreachable and the idle
func (r *Room) removeUnresponsive(ctx context.Context) {
	players := r.Players()
	evict := make([]string, 0)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range players {
		g.Go(func() error {
			idle := r.clock.Now().Sub(c.LastActive())
			if !c.Ping(gctx) || (r.idleTimeout > 0 && idle > r.idleTimeout) {
				mu.Lock()
				evict = append(evict, c.ID())
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, id := range evict {
		r.logger.Info("evicting unresponsive player", "player", id)
		if err := r.Leave(ctx, id); err != nil {
			r.logger.Warn("eviction failed", "player", id, "error", err)
		}
	}
}

// RoomUpdate is the room-level message broadcast on membership changes
type RoomUpdate struct {
	MessageType string                     `json:"message_type"`
	Event       string                     `json:"event"`
	RoomID      string                     `json:"room_id"`
	PlayerIDs   []string                   `json:"player_ids"`
	Players     map[string]game.PlayerInfo `json:"players"`
	PlayerID    string                     `json:"player_id"`
}

func (r *Room) broadcastRoomUpdate(ctx context.Context, event, playerID string) {
	r.mu.Lock()
	players := r.seats.Players()
	update := RoomUpdate{
		MessageType: "room-update",
		Event:       event,
		RoomID:      r.id,
		PlayerIDs:   r.seats.IDs(),
		Players:     make(map[string]game.PlayerInfo, len(players)),
		PlayerID:    playerID,
	}
	for _, c := range players {
		update.Players[c.ID()] = c.Info()
	}
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range players {
		g.Go(func() error {
			if err := c.Send(gctx, update); err != nil {
				r.logger.Debug("room update not delivered", "player", c.ID())
			}
			return nil
		})
	}
	_ = g.Wait()
}
