package game

import "sort"

// Pot is one pot with the active players eligible to win it
type Pot struct {
	money   int
	players []*Client
}

// Money returns the chips in the pot
func (p *Pot) Money() int {
	return p.money
}

// Players returns the players eligible for the pot
func (p *Pot) Players() []*Client {
	return p.players
}

// Pots accumulates the bets of a hand and splits them into main and side
// pots. The split is recomputed from the cumulative totals after every
// betting round, so pot membership always reflects the current fold state.
type Pots struct {
	players *Players
	bets    map[string]int
	pots    []*Pot
}

// NewPots creates an empty pot tracker over the hand's registry
func NewPots(players *Players) *Pots {
	bets := make(map[string]int)
	for _, c := range players.Seated() {
		bets[c.ID()] = 0
	}
	return &Pots{players: players, bets: bets}
}

// Pots returns the current pots, main pot first
func (ps *Pots) Pots() []*Pot {
	return ps.pots
}

// Total returns the chips across all pots
func (ps *Pots) Total() int {
	total := 0
	for _, p := range ps.pots {
		total += p.money
	}
	return total
}

// AddBets folds a betting round's per-player totals into the cumulative
// bets and rebuilds the pots.
//
// Pots are layered by the distinct cumulative totals of the active
// players, lowest first: each layer takes that level from every player
// still owing and is contested by the active players who reached it.
// Money from folded and removed players is spare: it joins the next pot
// layered above their contribution. Spare money that no active player's
// contribution reaches is an accounting failure.
func (ps *Pots) AddBets(bets map[string]int) error {
	for id := range ps.bets {
		ps.bets[id] += bets[id]
	}

	seated := ps.players.Seated()
	remaining := make(map[string]int, len(seated))
	for _, c := range seated {
		remaining[c.ID()] = ps.bets[c.ID()]
	}
	sorted := make([]*Client, len(seated))
	copy(sorted, seated)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ps.bets[sorted[i].ID()] < ps.bets[sorted[j].ID()]
	})

	ps.pots = nil
	spare := 0
	for i, c := range sorted {
		active, err := ps.players.IsActive(c.ID())
		if err != nil {
			return err
		}
		if !active {
			spare += remaining[c.ID()]
			remaining[c.ID()] = 0
			continue
		}
		level := remaining[c.ID()]
		if level == 0 {
			continue
		}

		pot := &Pot{money: spare}
		spare = 0
		for _, other := range sorted[i:] {
			if otherActive, _ := ps.players.IsActive(other.ID()); otherActive {
				pot.players = append(pot.players, other)
			}
			pot.money += level
			remaining[other.ID()] -= level
		}
		ps.pots = append(ps.pots, pot)
	}

	if spare != 0 {
		return ErrInvalidBets
	}
	return nil
}
