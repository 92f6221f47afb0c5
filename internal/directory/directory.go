// Package directory persists player records and their room assignment so
// a reconnecting player can be routed back to the table they left.
package directory

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a player has no record
var ErrNotFound = errors.New("player not found")

// Record is one player's stored state
type Record struct {
	ID     string
	Name   string
	Money  int
	RoomID string
}

// Directory stores player records keyed by id
type Directory interface {
	// Put creates or replaces a player's record
	Put(ctx context.Context, rec Record) error

	// Get returns a player's record or ErrNotFound
	Get(ctx context.Context, playerID string) (Record, error)

	// SetRoom updates a player's room assignment. An empty roomID clears it.
	SetRoom(ctx context.Context, playerID, roomID string) error

	// SetMoney updates a player's balance
	SetMoney(ctx context.Context, playerID string, money int) error

	// Close releases the backing store
	Close() error
}
