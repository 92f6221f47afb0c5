// Package bot implements automated players that connect to the server
// over websockets and play by strategy. Bots fill empty seats during
// development and load testing.
package bot

import (
	rand "math/rand/v2"

	"pokerd/internal/game"
)

// Situation is what a strategy sees when asked to act
type Situation struct {
	MinBet   int
	MaxBet   int
	Category int
	Money    int
}

// Strategy decides a bet for a situation. The returned amount must be
// game.FoldBet or within [MinBet, MaxBet].
type Strategy interface {
	Name() string
	Bet(s Situation) int
}

// NewStrategy returns the named strategy
func NewStrategy(name string, rng *rand.Rand) Strategy {
	switch name {
	case "fold":
		return FoldStrategy{}
	case "rand":
		return &RandStrategy{rng: rng}
	default:
		return CallStrategy{}
	}
}

// CallStrategy always checks or calls
type CallStrategy struct{}

func (CallStrategy) Name() string { return "call" }

func (CallStrategy) Bet(s Situation) int {
	return s.MinBet
}

// FoldStrategy folds to any bet and checks when free
type FoldStrategy struct{}

func (FoldStrategy) Name() string { return "fold" }

func (FoldStrategy) Bet(s Situation) int {
	if s.MinBet == 0 {
		return 0
	}
	return game.FoldBet
}

// RandStrategy mixes folds, calls and raises, leaning on hand category
type RandStrategy struct {
	rng *rand.Rand
}

func (*RandStrategy) Name() string { return "rand" }

func (r *RandStrategy) Bet(s Situation) int {
	roll := r.rng.Float64()

	// stronger categories fold less and raise more
	foldCut := 0.3 - float64(s.Category)*0.05
	raiseCut := 0.8 - float64(s.Category)*0.05

	switch {
	case s.MinBet > 0 && roll < foldCut:
		return game.FoldBet
	case roll >= raiseCut && s.MaxBet > s.MinBet:
		spread := s.MaxBet - s.MinBet
		return s.MinBet + 1 + r.rng.IntN(spread)
	default:
		return s.MinBet
	}
}
