package eval

import (
	"fmt"

	"pokerd/internal/deck"
)

// Detector evaluates card multisets into scores under a fixed variant
// and rank floor. Detection is pure: it never caches across calls.
type Detector struct {
	variant    Variant
	lowestRank deck.Rank
}

// NewDetector creates a detector for the given variant. lowestRank is the
// deck's rank floor, which positions the wheel straight.
func NewDetector(variant Variant, lowestRank deck.Rank) *Detector {
	return &Detector{variant: variant, lowestRank: lowestRank}
}

// NewHoldemDetector creates a detector with full-deck Hold'em rules
func NewHoldemDetector() *Detector {
	return NewDetector(Holdem, deck.Two)
}

// Variant returns the detector's ranking variant
func (d *Detector) Variant() Variant {
	return d.variant
}

// Score evaluates cards (7 for Hold'em, 5 for traditional) into a Score.
// Categories are probed from strongest to weakest; the first match wins.
func (d *Detector) Score(cards []deck.Card) (Score, error) {
	if len(cards) == 0 {
		return Score{}, fmt.Errorf("no cards to score")
	}

	set := newCardSet(cards, d.lowestRank)
	probes := []struct {
		category Category
		detect   func() []deck.Card
	}{
		{StraightFlush, set.straightFlush},
		{Quads, set.quads},
		{FullHouse, set.fullHouse},
		{Flush, set.flush},
		{Straight, set.straight},
		{Trips, set.trips},
		{TwoPair, set.twoPair},
		{Pair, set.pair},
		{HighCard, set.highCard},
	}

	for _, probe := range probes {
		if best := probe.detect(); best != nil {
			return Score{Variant: d.variant, Category: probe.category, Cards: best}, nil
		}
	}
	return Score{}, fmt.Errorf("unable to detect a score for %v", cards)
}
