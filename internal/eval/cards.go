package eval

import (
	"sort"

	"pokerd/internal/deck"
)

// cardSet wraps a hand of cards sorted descending by packed value and
// provides the category detection primitives. The rank floor matters for
// wheel straights: the ace closes a straight ending at the lowest
// playable rank.
type cardSet struct {
	sorted     []deck.Card
	lowestRank deck.Rank
}

func newCardSet(cards []deck.Card, lowestRank deck.Rank) *cardSet {
	sorted := make([]deck.Card, len(cards))
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[j].Less(sorted[i])
	})
	return &cardSet{sorted: sorted, lowestRank: lowestRank}
}

// groupsOf returns every rank group of exactly n cards, highest rank first.
func (c *cardSet) groupsOf(n int) [][]deck.Card {
	byRank := make(map[deck.Rank][]deck.Card)
	for _, card := range c.sorted {
		byRank[card.Rank] = append(byRank[card.Rank], card)
	}

	var groups [][]deck.Card
	for _, cards := range byRank {
		if len(cards) == n {
			groups = append(groups, cards)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0].Rank > groups[j][0].Rank
	})
	return groups
}

// straightIn scans cards sorted descending by rank and returns the highest
// run of 5 consecutive ranks, or nil. Duplicated ranks are skipped without
// breaking the run. The ace additionally closes the low end of a straight
// that reaches the lowest playable rank (the wheel).
func (c *cardSet) straightIn(sorted []deck.Card) []deck.Card {
	if len(sorted) < 5 {
		return nil
	}

	straight := []deck.Card{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		switch {
		case sorted[i].Rank == sorted[i-1].Rank-1:
			straight = append(straight, sorted[i])
			if len(straight) == 5 {
				return straight
			}
		case sorted[i].Rank == sorted[i-1].Rank:
			// same rank, run continues
		default:
			straight = []deck.Card{sorted[i]}
		}
	}

	if len(straight) == 4 && sorted[0].Rank == deck.Ace && straight[3].Rank == c.lowestRank {
		return append(straight, sorted[0])
	}
	return nil
}

func (c *cardSet) quads() []deck.Card {
	groups := c.groupsOf(4)
	if len(groups) == 0 {
		return nil
	}
	return c.mergeKickers(groups[0])
}

func (c *cardSet) fullHouse() []deck.Card {
	trips := c.groupsOf(3)
	pairs := c.groupsOf(2)
	if len(trips) == 0 || len(pairs) == 0 {
		return nil
	}
	return c.mergeKickers(append(trips[0], pairs[0]...))
}

func (c *cardSet) trips() []deck.Card {
	groups := c.groupsOf(3)
	if len(groups) == 0 {
		return nil
	}
	return c.mergeKickers(groups[0])
}

func (c *cardSet) twoPair() []deck.Card {
	pairs := c.groupsOf(2)
	if len(pairs) < 2 {
		return nil
	}
	return c.mergeKickers(append(pairs[0], pairs[1]...))
}

func (c *cardSet) pair() []deck.Card {
	pairs := c.groupsOf(2)
	if len(pairs) == 0 {
		return nil
	}
	return c.mergeKickers(pairs[0])
}

func (c *cardSet) straight() []deck.Card {
	return c.straightIn(c.sorted)
}

func (c *cardSet) flush() []deck.Card {
	bySuit := make(map[deck.Suit][]deck.Card)
	for _, card := range c.sorted {
		bySuit[card.Suit] = append(bySuit[card.Suit], card)
		if len(bySuit[card.Suit]) == 5 {
			return bySuit[card.Suit]
		}
	}
	return nil
}

func (c *cardSet) straightFlush() []deck.Card {
	bySuit := make(map[deck.Suit][]deck.Card)
	for _, card := range c.sorted {
		bySuit[card.Suit] = append(bySuit[card.Suit], card)
		if len(bySuit[card.Suit]) >= 5 {
			if straight := c.straightIn(bySuit[card.Suit]); straight != nil {
				return straight
			}
		}
	}
	return nil
}

func (c *cardSet) highCard() []deck.Card {
	return c.take(c.sorted)
}

// mergeKickers completes a category's defining cards with the highest
// remaining cards, truncated to five.
func (c *cardSet) mergeKickers(scoreCards []deck.Card) []deck.Card {
	used := make(map[int]bool, len(scoreCards))
	for _, card := range scoreCards {
		used[card.Value()] = true
	}
	merged := scoreCards
	for _, card := range c.sorted {
		if !used[card.Value()] {
			merged = append(merged, card)
		}
	}
	return c.take(merged)
}

func (c *cardSet) take(cards []deck.Card) []deck.Card {
	if len(cards) > 5 {
		return cards[:5]
	}
	return cards
}
