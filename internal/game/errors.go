package game

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPlayer is returned when a player id is not seated in the registry
	ErrUnknownPlayer = errors.New("unknown player id")

	// ErrInactivePlayer is returned when an operation requires an active player
	ErrInactivePlayer = errors.New("inactive player")

	// ErrNoActivePlayers means a betting round was started with nobody to act
	ErrNoActivePlayers = errors.New("no active players in this game")

	// ErrNotEnoughPlayers means fewer than two players can continue the hand
	ErrNotEnoughPlayers = errors.New("not enough players")

	// ErrInvalidBets signals a pot-accounting imbalance. It indicates a
	// bookkeeping bug and is fatal to the current hand.
	ErrInvalidBets = errors.New("invalid bets: leftover spare money")

	// ErrChannelClosed is returned when a player's channel is gone
	ErrChannelClosed = errors.New("channel closed")

	// ErrMessageTimeout is returned when no message arrived before the deadline
	ErrMessageTimeout = errors.New("timed out waiting for message")

	// errHandEarly short-circuits the hand when fewer than two players
	// remain active. It is handled inside PlayHand, never returned.
	errHandEarly = errors.New("hand ended early")
)

// FormatError reports a malformed inbound message. It is sent back to the
// offending player as an error payload and never aborts the hand.
type FormatError struct {
	Attribute string
	Desc      string
}

func (e *FormatError) Error() string {
	msg := "invalid message received"
	if e.Attribute != "" {
		msg += fmt.Sprintf(": invalid attribute %q", e.Attribute)
	}
	if e.Desc != "" {
		msg += ": " + e.Desc
	}
	return msg
}
