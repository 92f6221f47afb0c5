package room

import (
	"errors"

	"pokerd/internal/game"
)

var (
	// ErrRoomFull is returned when every seat is taken
	ErrRoomFull = errors.New("room is full")

	// ErrUnknownPlayer is returned when a player is not seated in the room
	ErrUnknownPlayer = errors.New("player not in this room")
)

// Seats is a fixed array of seats, some of which may be empty. Seat order
// is stable: a player keeps their seat until they leave, and dealer
// rotation walks the occupied seats in order.
//
// Seats is not synchronized; the owning room guards it.
type Seats struct {
	seats []*game.Client
}

// NewSeats creates an empty seat array of the given size
func NewSeats(size int) *Seats {
	return &Seats{seats: make([]*game.Client, size)}
}

// Size returns the number of seats
func (s *Seats) Size() int {
	return len(s.seats)
}

// Count returns the number of occupied seats
func (s *Seats) Count() int {
	n := 0
	for _, c := range s.seats {
		if c != nil {
			n++
		}
	}
	return n
}

// Full reports whether every seat is taken
func (s *Seats) Full() bool {
	return s.Count() == len(s.seats)
}

// Get returns the seated client with the given id
func (s *Seats) Get(id string) (*game.Client, bool) {
	for _, c := range s.seats {
		if c != nil && c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Add seats a client at the first empty seat
func (s *Seats) Add(c *game.Client) error {
	for i, seat := range s.seats {
		if seat == nil {
			s.seats[i] = c
			return nil
		}
	}
	return ErrRoomFull
}

// Remove frees the seat held by the given player
func (s *Seats) Remove(id string) error {
	for i, c := range s.seats {
		if c != nil && c.ID() == id {
			s.seats[i] = nil
			return nil
		}
	}
	return ErrUnknownPlayer
}

// Players returns the seated clients in seat order
func (s *Seats) Players() []*game.Client {
	players := make([]*game.Client, 0, len(s.seats))
	for _, c := range s.seats {
		if c != nil {
			players = append(players, c)
		}
	}
	return players
}

// IDs returns one entry per seat, "" for empty seats
func (s *Seats) IDs() []string {
	ids := make([]string, len(s.seats))
	for i, c := range s.seats {
		if c != nil {
			ids[i] = c.ID()
		}
	}
	return ids
}
