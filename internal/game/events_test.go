package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeFlattensPayload(t *testing.T) {
	env := Envelope{
		GameID: "g-42",
		Kind:   EventBet,
		Time:   time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		Payload: BetEvent{
			Player:  PlayerInfo{ID: "p1", Name: "alice", Money: 60},
			Bet:     40,
			BetType: BetRaise,
			Bets:    map[string]int{"p1": 40},
		},
	}

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "game-update", decoded["message_type"])
	assert.Equal(t, "bet", decoded["event"])
	assert.Equal(t, "g-42", decoded["game_id"])
	assert.Equal(t, "2025-06-01 12:30:00+0000", decoded["time"])
	assert.Equal(t, float64(40), decoded["bet"])
	assert.Equal(t, "raise", decoded["bet_type"])

	player := decoded["player"].(map[string]any)
	assert.Equal(t, "p1", player["id"])
	assert.Equal(t, "alice", player["name"])
}

func TestEnvelopeTarget(t *testing.T) {
	broadcast := Envelope{Kind: EventSharedCards, Payload: SharedCardsEvent{}}
	assert.Empty(t, broadcast.Target())

	targeted := Envelope{
		Kind:    EventCardsAssignment,
		Payload: CardsAssignmentEvent{TargetID: "p2"},
	}
	assert.Equal(t, "p2", targeted.Target())
}

func TestMessageValidate(t *testing.T) {
	bet := 20
	assert.NoError(t, Message{Type: MessageTypeBet, Bet: &bet}.Validate(MessageTypeBet))

	err := Message{Type: "chat"}.Validate(MessageTypeBet)
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "message_type", formatErr.Attribute)

	err = Message{Type: MessageTypeBet}.Validate(MessageTypeBet)
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "bet", formatErr.Attribute)
}
