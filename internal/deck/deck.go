package deck

import (
	"fmt"
	rand "math/rand/v2"
)

// Deck owns a shuffled draw pile and a discard pile covering every
// (rank, suit) combination for ranks at or above a configurable floor.
// Decks are not safe for concurrent use: each deck belongs to exactly
// one hand's execution.
type Deck struct {
	draw    []Card
	discard []Card
	rng     *rand.Rand
}

// New builds a deck of all cards with rank in [lowestRank, Ace] and
// shuffles it with the provided RNG.
func New(lowestRank Rank, rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	for rank := lowestRank; rank <= Ace; rank++ {
		for suit := Spades; suit <= Hearts; suit++ {
			d.draw = append(d.draw, NewCard(rank, suit))
		}
	}
	d.shuffle(d.draw)
	return d
}

func (d *Deck) shuffle(cards []Card) {
	d.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Pop removes and returns n cards from the top of the draw pile. When the
// draw pile runs short the discard pile is shuffled back in and popping
// continues. Cards dealt this hand are never recycled mid-hand because
// Push only refills the discard pile between hands.
func (d *Deck) Pop(n int) ([]Card, error) {
	if len(d.draw)+len(d.discard) < n {
		return nil, fmt.Errorf("deck holds %d cards, %d requested", len(d.draw)+len(d.discard), n)
	}

	cards := make([]Card, 0, n)
	if len(d.draw) < n {
		cards = append(cards, d.draw...)
		d.draw = d.discard
		d.discard = nil
		d.shuffle(d.draw)
	}
	for len(cards) < n {
		last := len(d.draw) - 1
		cards = append(cards, d.draw[last])
		d.draw = d.draw[:last]
	}
	return cards, nil
}

// Push returns cards to the discard pile. Used between hands, not mid-hand.
func (d *Deck) Push(cards []Card) {
	d.discard = append(d.discard, cards...)
}

// Remaining returns the number of cards left in the draw pile
func (d *Deck) Remaining() int {
	return len(d.draw)
}

// Factory builds fresh decks with a fixed rank floor, one per hand.
type Factory struct {
	lowestRank Rank
	rng        *rand.Rand
}

// NewFactory creates a deck factory
func NewFactory(lowestRank Rank, rng *rand.Rand) *Factory {
	return &Factory{lowestRank: lowestRank, rng: rng}
}

// Create builds and shuffles a new deck
func (f *Factory) Create() *Deck {
	return New(f.lowestRank, f.rng)
}

// LowestRank returns the deck's configured rank floor
func (f *Factory) LowestRank() Rank {
	return f.lowestRank
}
