package game

import (
	"github.com/kevpoker/holdemd/internal/deck"
)

// Player is the per-seat record owned by a Game. Seat ids are assigned in
// join order and never change; table position is carried by Game.seatOrder.
type Player struct {
	Seat    int
	Name    string
	Address string
	Secret  string

	Chips     int
	HoleCards []deck.Card

	// StreetContrib is chips pushed in on the current street, HandContrib
	// chips pushed in on prior streets of the current hand.
	StreetContrib int
	HandContrib   int

	Folded     bool
	AllIn      bool
	Eliminated bool

	// HasOption marks a player who has matched the current bet but still
	// holds the right to act: the big blind preflop, and the closing actor
	// after each deal.
	HasOption bool
}

// CanAct reports whether the player can still take an action this street.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn && !p.Eliminated
}

// InHand reports whether the player still contests the current hand.
func (p *Player) InHand() bool {
	return !p.Folded && !p.Eliminated
}
