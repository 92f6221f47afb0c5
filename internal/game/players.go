package game

// Players is the seat registry for one hand. Seat order is fixed at
// construction and determines deal and action order. A player is active
// until folded; a removed player is additionally flagged dead and drops
// out of the seat listing entirely.
//
// The registry is confined to the hand's goroutine and needs no locking.
type Players struct {
	order   []string
	players map[string]*Client
	folded  map[string]bool
	dead    map[string]bool
}

// NewPlayers creates a registry over the given clients in seat order
func NewPlayers(clients []*Client) *Players {
	ps := &Players{
		order:   make([]string, 0, len(clients)),
		players: make(map[string]*Client, len(clients)),
		folded:  make(map[string]bool),
		dead:    make(map[string]bool),
	}
	for _, c := range clients {
		ps.order = append(ps.order, c.ID())
		ps.players[c.ID()] = c
	}
	return ps
}

// Fold marks a player folded for the current hand
func (ps *Players) Fold(id string) error {
	if _, ok := ps.players[id]; !ok {
		return ErrUnknownPlayer
	}
	ps.folded[id] = true
	return nil
}

// Remove folds a player and flags them dead. Dead players stay out of
// every listing until the registry is rebuilt for the next hand.
func (ps *Players) Remove(id string) error {
	if err := ps.Fold(id); err != nil {
		return err
	}
	ps.dead[id] = true
	return nil
}

// Reset clears all folded flags. Dead players stay dead.
func (ps *Players) Reset() {
	ps.folded = make(map[string]bool)
}

// Get returns the player with the given id
func (ps *Players) Get(id string) (*Client, error) {
	c, ok := ps.players[id]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	return c, nil
}

// IsActive reports whether a player is still in the hand
func (ps *Players) IsActive(id string) (bool, error) {
	if _, ok := ps.players[id]; !ok {
		return false, ErrUnknownPlayer
	}
	return !ps.folded[id], nil
}

// Round returns the active players in action order, starting from startID
// (inclusive when active) and wrapping around the table. With reverse set
// the table is walked backwards.
func (ps *Players) Round(startID string, reverse bool) ([]*Client, error) {
	start := -1
	for i, id := range ps.order {
		if id == startID {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, ErrUnknownPlayer
	}

	step := 1
	if reverse {
		step = len(ps.order) - 1
	}

	round := make([]*Client, 0, len(ps.order))
	for k, i := 0, start; k < len(ps.order); k, i = k+1, (i+step)%len(ps.order) {
		id := ps.order[i]
		if !ps.folded[id] && !ps.dead[id] {
			round = append(round, ps.players[id])
		}
	}
	return round, nil
}

// NextActive returns the first active player strictly after startID in seat
// order, or nil when startID is the only active player left. startID must
// itself be active; asking from a folded seat fails with ErrInactivePlayer.
func (ps *Players) NextActive(startID string) (*Client, error) {
	start := -1
	for i, id := range ps.order {
		if id == startID {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, ErrUnknownPlayer
	}
	if ps.folded[startID] || ps.dead[startID] {
		return nil, ErrInactivePlayer
	}

	for k := 1; k < len(ps.order); k++ {
		id := ps.order[(start+k)%len(ps.order)]
		if !ps.folded[id] && !ps.dead[id] {
			return ps.players[id], nil
		}
	}
	return nil, nil
}

// Seated returns every seated player in seat order, dead ones included.
// Pot accounting needs their contributions even after removal.
func (ps *Players) Seated() []*Client {
	seated := make([]*Client, 0, len(ps.order))
	for _, id := range ps.order {
		seated = append(seated, ps.players[id])
	}
	return seated
}

// All returns the seated players that are not dead, in seat order
func (ps *Players) All() []*Client {
	all := make([]*Client, 0, len(ps.order))
	for _, id := range ps.order {
		if !ps.dead[id] {
			all = append(all, ps.players[id])
		}
	}
	return all
}

// Active returns the players still in the hand, in seat order
func (ps *Players) Active() []*Client {
	active := make([]*Client, 0, len(ps.order))
	for _, id := range ps.order {
		if !ps.folded[id] && !ps.dead[id] {
			active = append(active, ps.players[id])
		}
	}
	return active
}

// Folders returns the players that folded this hand, dead ones included
func (ps *Players) Folders() []*Client {
	folders := make([]*Client, 0, len(ps.folded))
	for _, id := range ps.order {
		if ps.folded[id] {
			folders = append(folders, ps.players[id])
		}
	}
	return folders
}

// Count returns the number of seated, non-dead players
func (ps *Players) Count() int {
	return len(ps.All())
}

// CountActive returns the number of players still in the hand
func (ps *Players) CountActive() int {
	return len(ps.Active())
}

// CountActiveWithMoney returns the number of active players that can still bet
func (ps *Players) CountActiveWithMoney() int {
	n := 0
	for _, c := range ps.Active() {
		if c.Money() > 0 {
			n++
		}
	}
	return n
}
