package server

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"pokerd/internal/deck"
	"pokerd/internal/directory"
	"pokerd/internal/eval"
	"pokerd/internal/game"
	"pokerd/internal/randutil"
	"pokerd/internal/room"
)

// Lobby assigns connecting players to rooms. A player asking for a room
// id gets that room, created private on first use; everyone else lands in
// the first public room with a free seat. The lobby's mutex guards room
// selection only, never player I/O.
type Lobby struct {
	cfg    *Config
	dir    directory.Directory
	clock  quartz.Clock
	logger *log.Logger

	mu    sync.Mutex
	rooms []*room.Room
	seed  int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLobby creates a lobby backed by the given player directory
func NewLobby(cfg *Config, dir directory.Directory, clock quartz.Clock, logger *log.Logger) *Lobby {
	ctx, cancel := context.WithCancel(context.Background())
	return &Lobby{
		cfg:    cfg,
		dir:    dir,
		clock:  clock,
		logger: logger.WithPrefix("lobby"),
		seed:   clock.Now().UnixNano(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Join seats a player: in the identified room when roomID is set, in any
// public room with space otherwise. The room is activated if it is not
// already playing.
func (l *Lobby) Join(ctx context.Context, player *game.Player, ch game.Channel, roomID string) (*room.Room, *game.Client, error) {
	for {
		r, err := l.pickRoom(roomID)
		if err != nil {
			return nil, nil, err
		}

		client, err := r.Join(ctx, player, ch)
		r.Release()
		if errors.Is(err, room.ErrRoomFull) && roomID == "" {
			// the room filled up between selection and admission
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		if err := l.dir.SetRoom(ctx, player.ID(), r.ID()); err != nil && !errors.Is(err, directory.ErrNotFound) {
			l.logger.Warn("room assignment not persisted", "player", player.ID(), "error", err)
		}

		if !r.Active() {
			l.wg.Add(1)
			go func() {
				defer l.wg.Done()
				r.Activate(l.ctx)
			}()
		}
		return r, client, nil
	}
}

// pickRoom selects or creates the room to join under the lobby mutex.
// The returned room is reserved so a concurrent prune cannot drop it
// before the player takes a seat; the caller releases the reservation
// once the join attempt finishes.
func (l *Lobby) pickRoom(roomID string) (*room.Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneEmptyRooms()

	r := l.findRoom(roomID)
	if r == nil {
		if roomID != "" {
			r = l.createRoom(roomID, true)
		} else {
			r = l.createRoom(uuid.NewString(), false)
		}
	}
	r.Reserve()
	return r, nil
}

// findRoom returns the identified room, or any joinable public room when
// roomID is empty. Callers hold the lobby mutex.
func (l *Lobby) findRoom(roomID string) *room.Room {
	for _, r := range l.rooms {
		if roomID != "" {
			if r.ID() == roomID {
				return r
			}
		} else if !r.Private() && !r.Full() {
			return r
		}
	}
	return nil
}

// createRoom builds a room wired to a game factory with its own RNG
func (l *Lobby) createRoom(id string, private bool) *room.Room {
	l.seed++
	variant := eval.Holdem
	if l.cfg.Game.Variant == "traditional" {
		variant = eval.Traditional
	}
	gameCfg := game.DefaultConfig()
	gameCfg.SmallBlind = l.cfg.Game.SmallBlind
	gameCfg.BigBlind = l.cfg.Game.BigBlind
	gameCfg.LowestRank = deck.Rank(l.cfg.Game.LowestRank)
	gameCfg.Variant = variant
	gameCfg.BetTimeout = l.cfg.BetTimeout()
	gameCfg.WaitAfterCards = l.cfg.WaitAfterCards()
	gameCfg.WaitAfterRound = l.cfg.WaitAfterRound()
	gameCfg.WaitAfterShowdown = l.cfg.WaitAfterShowdown()
	gameCfg.WaitAfterWinner = l.cfg.WaitAfterWinner()

	factory := &game.HoldemFactory{
		Cfg:         gameCfg,
		DeckFactory: deck.NewFactory(gameCfg.LowestRank, randutil.New(l.seed)),
		Clock:       l.clock,
		Logger:      l.logger,
	}
	r := room.New(id, private, l.cfg.Game.RoomSize,
		func(players []*game.Client) room.Game { return factory.Create(players) },
		l.cfg.IdleTimeout(), l.persistLeave, l.clock, l.logger)
	l.rooms = append(l.rooms, r)
	l.logger.Info("room created", "room", id, "private", private)
	return r
}

// persistLeave records a leaving player's balance and clears their room
func (l *Lobby) persistLeave(ctx context.Context, client *game.Client) {
	if err := l.dir.SetMoney(ctx, client.ID(), client.Money()); err != nil && !errors.Is(err, directory.ErrNotFound) {
		l.logger.Warn("balance not persisted", "player", client.ID(), "error", err)
	}
	if err := l.dir.SetRoom(ctx, client.ID(), ""); err != nil && !errors.Is(err, directory.ErrNotFound) {
		l.logger.Warn("room assignment not cleared", "player", client.ID(), "error", err)
	}
}

// pruneEmptyRooms drops rooms that are empty, not playing, and not
// reserved by an in-flight join
func (l *Lobby) pruneEmptyRooms() {
	kept := l.rooms[:0]
	for _, r := range l.rooms {
		if r.PlayerCount() > 0 || r.Active() || r.Reserved() {
			kept = append(kept, r)
		}
	}
	l.rooms = kept
}

// Rooms returns a snapshot of the lobby's rooms
func (l *Lobby) Rooms() []*room.Room {
	l.mu.Lock()
	defer l.mu.Unlock()
	rooms := make([]*room.Room, len(l.rooms))
	copy(rooms, l.rooms)
	return rooms
}

// Shutdown stops every room and evicts all players
func (l *Lobby) Shutdown(ctx context.Context) {
	l.cancel()
	l.wg.Wait()

	l.mu.Lock()
	rooms := l.rooms
	l.rooms = nil
	l.mu.Unlock()
	for _, r := range rooms {
		r.Close(ctx)
	}
	l.logger.Info("lobby shut down", "rooms", len(rooms))
}
