package game

import (
	"encoding/json"
	"fmt"
	"time"

	"pokerd/internal/deck"
	"pokerd/internal/eval"
)

// EventKind discriminates game events on the wire
type EventKind string

const (
	EventNewHand           EventKind = "new-game"
	EventCardsAssignment   EventKind = "cards-assignment"
	EventSharedCards       EventKind = "shared-cards"
	EventBetAction         EventKind = "player-action"
	EventBet               EventKind = "bet"
	EventFold              EventKind = "fold"
	EventDeadPlayer        EventKind = "dead-player"
	EventPotsUpdate        EventKind = "pots-update"
	EventWinnerDesignation EventKind = "winner-designation"
	EventShowdown          EventKind = "showdown"
	EventGameOver          EventKind = "game-over"
)

// Event is a game event payload. The concrete types below form a closed
// set; emit sites construct them directly so a payload can never carry a
// kind it does not match.
type Event interface {
	Kind() EventKind
}

// TargetedEvent is an event addressed to a single player instead of the
// whole table.
type TargetedEvent interface {
	Event
	Target() string
}

// CardData is the wire representation of a card
type CardData struct {
	Rank     int    `json:"rank"`
	Suit     int    `json:"suit"`
	RankName string `json:"rank_name"`
	SuitName string `json:"suit_name"`
}

func cardData(c deck.Card) CardData {
	return CardData{
		Rank:     int(c.Rank),
		Suit:     int(c.Suit),
		RankName: c.Rank.String(),
		SuitName: c.Suit.Name(),
	}
}

func cardsData(cards []deck.Card) []CardData {
	data := make([]CardData, len(cards))
	for i, c := range cards {
		data[i] = cardData(c)
	}
	return data
}

// ScoreData is the wire representation of a score
type ScoreData struct {
	Category     int        `json:"category"`
	CategoryName string     `json:"category_name"`
	Cards        []CardData `json:"cards"`
}

func scoreData(s eval.Score) ScoreData {
	return ScoreData{
		Category:     int(s.Category),
		CategoryName: s.Category.String(),
		Cards:        cardsData(s.Cards),
	}
}

// PotData is the wire representation of a pot
type PotData struct {
	Money     int      `json:"money"`
	PlayerIDs []string `json:"player_ids"`
}

func potData(p *Pot) PotData {
	data := PotData{Money: p.Money()}
	for _, c := range p.Players() {
		data.PlayerIDs = append(data.PlayerIDs, c.ID())
	}
	return data
}

func potsData(pots []*Pot) []PotData {
	data := make([]PotData, len(pots))
	for i, p := range pots {
		data[i] = potData(p)
	}
	return data
}

func playerInfos(clients []*Client) []PlayerInfo {
	infos := make([]PlayerInfo, len(clients))
	for i, c := range clients {
		infos[i] = c.Info()
	}
	return infos
}

func playerInfoMap(clients []*Client) map[string]PlayerInfo {
	infos := make(map[string]PlayerInfo, len(clients))
	for _, c := range clients {
		infos[c.ID()] = c.Info()
	}
	return infos
}

// NewHandEvent announces the start of a hand
type NewHandEvent struct {
	GameID     string       `json:"game_id"`
	GameType   string       `json:"game_type"`
	Players    []PlayerInfo `json:"players"`
	DealerID   string       `json:"dealer_id"`
	SmallBlind int          `json:"small_blind"`
	BigBlind   int          `json:"big_blind"`
}

func (NewHandEvent) Kind() EventKind { return EventNewHand }

// CardsAssignmentEvent carries a player's hole cards. It is addressed to
// that player only.
type CardsAssignmentEvent struct {
	TargetID string     `json:"target"`
	Cards    []CardData `json:"cards"`
	Score    ScoreData  `json:"score"`
}

func (CardsAssignmentEvent) Kind() EventKind  { return EventCardsAssignment }
func (e CardsAssignmentEvent) Target() string { return e.TargetID }

// SharedCardsEvent announces newly revealed shared cards
type SharedCardsEvent struct {
	Cards []CardData `json:"cards"`
}

func (SharedCardsEvent) Kind() EventKind { return EventSharedCards }

// BetActionEvent asks a player to act and tells the table who is thinking
type BetActionEvent struct {
	Player    PlayerInfo     `json:"player"`
	MinBet    int            `json:"min_bet"`
	MaxBet    int            `json:"max_bet"`
	Bets      map[string]int `json:"bets"`
	Timeout   int            `json:"timeout"`
	TimeoutAt string         `json:"timeout_date"`
}

func (BetActionEvent) Kind() EventKind { return EventBetAction }

// BetType classifies a resolved bet
type BetType string

const (
	BetBlind BetType = "blind"
	BetCheck BetType = "check"
	BetCall  BetType = "call"
	BetRaise BetType = "raise"
	BetAllIn BetType = "all-in"
)

// BetEvent announces a resolved bet
type BetEvent struct {
	Player  PlayerInfo     `json:"player"`
	Bet     int            `json:"bet"`
	BetType BetType        `json:"bet_type"`
	Bets    map[string]int `json:"bets"`
}

func (BetEvent) Kind() EventKind { return EventBet }

// FoldEvent announces a fold
type FoldEvent struct {
	Player PlayerInfo `json:"player"`
}

func (FoldEvent) Kind() EventKind { return EventFold }

// DeadPlayerEvent announces a player removed from the hand
type DeadPlayerEvent struct {
	Player PlayerInfo `json:"player"`
}

func (DeadPlayerEvent) Kind() EventKind { return EventDeadPlayer }

// PotsUpdateEvent carries the pots rebuilt after a betting round
type PotsUpdateEvent struct {
	Pots    []PotData             `json:"pots"`
	Players map[string]PlayerInfo `json:"players"`
}

func (PotsUpdateEvent) Kind() EventKind { return EventPotsUpdate }

// PotWinnersData describes an awarded pot
type PotWinnersData struct {
	Money      int      `json:"money"`
	WinnerIDs  []string `json:"winner_ids"`
	MoneySplit int      `json:"money_split"`
}

// WinnerDesignationEvent announces the winners of one pot, last pot first
type WinnerDesignationEvent struct {
	Pot          PotWinnersData        `json:"pot"`
	UpcomingPots []PotData             `json:"upcoming_pots"`
	Players      map[string]PlayerInfo `json:"players"`
}

func (WinnerDesignationEvent) Kind() EventKind { return EventWinnerDesignation }

// ShowdownHand is one player's revealed cards and score
type ShowdownHand struct {
	Cards []CardData `json:"cards"`
	Score ScoreData  `json:"score"`
}

// ShowdownEvent reveals the hands of the players reaching showdown
type ShowdownEvent struct {
	Players map[string]ShowdownHand `json:"players"`
}

func (ShowdownEvent) Kind() EventKind { return EventShowdown }

// GameOverEvent closes the hand. It is always the last event of a hand.
type GameOverEvent struct{}

func (GameOverEvent) Kind() EventKind { return EventGameOver }

// Envelope wraps an event with its routing metadata. On the wire the
// payload's fields are flattened next to the envelope's own.
type Envelope struct {
	GameID  string
	Kind    EventKind
	Time    time.Time
	Payload Event
}

// Target returns the addressed player id, or "" for a broadcast
func (e Envelope) Target() string {
	if t, ok := e.Payload.(TargetedEvent); ok {
		return t.Target()
	}
	return ""
}

// MarshalJSON flattens the payload fields beside message_type, event,
// game_id and the emission timestamp.
func (e Envelope) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Kind, err)
	}
	flat := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("flatten %s payload: %w", e.Kind, err)
	}

	quote := func(s string) json.RawMessage {
		b, _ := json.Marshal(s)
		return b
	}
	flat["message_type"] = quote("game-update")
	flat["event"] = quote(string(e.Kind))
	flat["game_id"] = quote(e.GameID)
	flat["time"] = quote(e.Time.UTC().Format(timeFormat))
	return json.Marshal(flat)
}

const timeFormat = "2006-01-02 15:04:05-0700"
