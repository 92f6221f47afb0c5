package game

import (
	"pokerd/internal/deck"
	"pokerd/internal/eval"
)

// Scores tracks the cards dealt during a hand and evaluates player scores
// on demand. A player's score always combines their hole cards with the
// shared cards revealed so far.
type Scores struct {
	detector *eval.Detector
	hole     map[string][]deck.Card
	shared   []deck.Card
}

// NewScores creates an empty score tracker backed by the given detector
func NewScores(detector *eval.Detector) *Scores {
	return &Scores{
		detector: detector,
		hole:     make(map[string][]deck.Card),
	}
}

// AssignCards sets a player's hole cards
func (s *Scores) AssignCards(playerID string, cards []deck.Card) {
	s.hole[playerID] = cards
}

// AddShared reveals additional shared cards
func (s *Scores) AddShared(cards []deck.Card) {
	s.shared = append(s.shared, cards...)
}

// Shared returns the shared cards revealed so far
func (s *Scores) Shared() []deck.Card {
	return s.shared
}

// PlayerCards returns a player's hole cards
func (s *Scores) PlayerCards(playerID string) []deck.Card {
	return s.hole[playerID]
}

// PlayerScore evaluates the player's best hand from their hole cards plus
// the shared cards
func (s *Scores) PlayerScore(playerID string) (eval.Score, error) {
	cards := make([]deck.Card, 0, len(s.hole[playerID])+len(s.shared))
	cards = append(cards, s.hole[playerID]...)
	cards = append(cards, s.shared...)
	return s.detector.Score(cards)
}
