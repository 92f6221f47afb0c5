package eval

import (
	"pokerd/internal/deck"
)

// Category identifies a hand category. The constants are ordered for
// detection only; relative strength between categories is defined per
// variant, see Variant.categoryRank.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	Trips
	Straight
	Flush
	FullHouse
	Quads
	StraightFlush
)

// String returns the string representation of a category
func (c Category) String() string {
	switch c {
	case HighCard:
		return "high-card"
	case Pair:
		return "pair"
	case TwoPair:
		return "two-pair"
	case Trips:
		return "three-of-a-kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full-house"
	case Quads:
		return "four-of-a-kind"
	case StraightFlush:
		return "straight-flush"
	default:
		return "?"
	}
}

// Variant selects the hand-ranking rules.
type Variant int

const (
	// Holdem ranks a flush below a full house and compares by ranks only.
	Holdem Variant = iota
	// Traditional ranks a full house below a flush and breaks residual
	// ties by suit, as played with a short deck.
	Traditional
)

// String returns the string representation of a variant
func (v Variant) String() string {
	if v == Traditional {
		return "traditional"
	}
	return "texas-holdem"
}

// categoryRank maps a category to its numeric strength under the variant.
func (v Variant) categoryRank(c Category) int {
	if v == Traditional {
		switch c {
		case FullHouse:
			return 5
		case Flush:
			return 6
		}
	}
	return int(c)
}

// Score is the result of evaluating a hand: a category plus the ordered
// best five cards that realise it.
type Score struct {
	Variant  Variant
	Category Category
	Cards    []deck.Card
}

// Strength packs the score into a single integer: the variant's category
// rank followed by 4 bits per card rank, and, for the traditional
// variant, 2 bits per card suit.
func (s Score) Strength() uint64 {
	strength := uint64(s.Variant.categoryRank(s.Category))
	for i := 0; i < 5; i++ {
		strength <<= 4
		if i < len(s.Cards) {
			strength += uint64(s.Cards[i].Rank)
		}
	}
	if s.Variant == Traditional {
		for i := 0; i < 5; i++ {
			strength <<= 2
			if i < len(s.Cards) {
				strength += uint64(s.Cards[i].Suit)
			}
		}
	}
	return strength
}

// Cmp compares two scores of the same variant: -1 when s is weaker,
// 0 on an exact tie (split pot), 1 when s is stronger.
//
// The traditional variant needs a boundary rule for straight flushes: the
// maximal straight flush beats the wheel straight flush outright, before
// any strength packing is consulted.
func (s Score) Cmp(other Score) int {
	if s.Variant == Traditional && s.Category == StraightFlush && other.Category == StraightFlush {
		if straightIsMax(s.Cards) && straightIsMin(other.Cards) {
			return 1
		}
		if straightIsMin(s.Cards) && straightIsMax(other.Cards) {
			return -1
		}
	}

	a, b := s.Strength(), other.Strength()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// straightIsMin reports a wheel: the ace sits at the low end.
func straightIsMin(straight []deck.Card) bool {
	return len(straight) == 5 && straight[4].Rank == deck.Ace
}

// straightIsMax reports an ace-high straight.
func straightIsMax(straight []deck.Card) bool {
	return len(straight) == 5 && straight[0].Rank == deck.Ace
}
