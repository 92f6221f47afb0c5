package game

import (
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"pokerd/internal/deck"
)

// HoldemFactory creates Hold'em games over a table's current players.
// Every hand gets a fresh game id and registry so per-hand state can
// never leak across hands.
type HoldemFactory struct {
	Cfg         Config
	DeckFactory *deck.Factory
	Clock       quartz.Clock
	Logger      *log.Logger
}

// Create builds a game for the given players in seat order
func (f *HoldemFactory) Create(clients []*Client) *Holdem {
	return NewHoldem(uuid.NewString(), f.Cfg, NewPlayers(clients), f.DeckFactory, f.Clock, f.Logger)
}
