package game

import (
	"context"
	"time"
)

// Channel is a bidirectional message channel to one player. Implementations
// wrap a transport (websocket, in-process pipe) and must be safe for one
// concurrent sender and one concurrent receiver.
//
// Recv honours the passed deadline and returns ErrMessageTimeout when it
// expires, or ErrChannelClosed once the transport is gone.
type Channel interface {
	Send(ctx context.Context, payload any) error
	Recv(ctx context.Context, deadline time.Time) (Message, error)
	Close() error
}

// Message is a structured inbound player message, tagged by message_type.
type Message struct {
	Type string `json:"message_type"`
	Bet  *int   `json:"bet,omitempty"`
}

// Validate checks the message against the expected discriminator and the
// presence of the fields that type requires.
func (m Message) Validate(expected string) error {
	if m.Type != expected {
		return &FormatError{Attribute: "message_type", Desc: "expected " + expected}
	}
	if expected == MessageTypeBet && m.Bet == nil {
		return &FormatError{Attribute: "bet", Desc: "missing bet amount"}
	}
	return nil
}

// Inbound message discriminators.
const (
	MessageTypeBet  = "bet"
	MessageTypePong = "pong"
)
