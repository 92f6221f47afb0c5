package game

import "fmt"

// Player holds the identity and chip count of a seated player. Chip
// mutations go through TakeMoney and AddMoney so a balance can never go
// negative.
type Player struct {
	id    string
	name  string
	money int
}

// NewPlayer creates a player with a starting chip count
func NewPlayer(id, name string, money int) *Player {
	return &Player{id: id, name: name, money: money}
}

// ID returns the player's unique id
func (p *Player) ID() string {
	return p.id
}

// Name returns the player's display name
func (p *Player) Name() string {
	return p.name
}

// Money returns the player's current chip count
func (p *Player) Money() int {
	return p.money
}

// TakeMoney removes chips from the player's balance
func (p *Player) TakeMoney(amount int) error {
	if amount < 0 {
		return fmt.Errorf("take money: negative amount %d", amount)
	}
	if amount > p.money {
		return fmt.Errorf("take money: player %s has %d, cannot take %d", p.id, p.money, amount)
	}
	p.money -= amount
	return nil
}

// AddMoney credits chips to the player's balance
func (p *Player) AddMoney(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("add money: non-positive amount %d", amount)
	}
	p.money += amount
	return nil
}

// Info returns the wire representation of the player
func (p *Player) Info() PlayerInfo {
	return PlayerInfo{ID: p.id, Name: p.name, Money: p.money}
}

// PlayerInfo is the public view of a player carried in events.
type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Money int    `json:"money"`
}

func (p *Player) String() string {
	return fmt.Sprintf("player %s (%q, %d chips)", p.id, p.name, p.money)
}
