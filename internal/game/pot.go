package game

import (
	"fmt"

	"github.com/kevpoker/holdemd/internal/deck"
	"github.com/kevpoker/holdemd/internal/evaluator"
)

// potLayer is one level of the pot produced by level-stripping hand
// contributions. The eligible seats, in table order, are the players who can
// win this layer; layers above a short all-in stack exclude that player.
type potLayer struct {
	amount   int
	eligible []int
}

// buildLayers strips hand contributions level by level. Each pass takes the
// smallest outstanding contribution among players still in the hand, deducts
// that much from everyone (folded contributions included) and opens a layer.
// Dead chips left once every in-hand player is stripped are folded into the
// last layer.
func buildLayers(players map[int]*Player, seatOrder []int) []potLayer {
	var layers []potLayer
	for {
		level := 0
		for _, seat := range seatOrder {
			p := players[seat]
			if p.HandContrib < 0 {
				panic(fmt.Sprintf("game: negative hand contribution %d for seat %d", p.HandContrib, seat))
			}
			if p.InHand() && p.HandContrib > 0 && (level == 0 || p.HandContrib < level) {
				level = p.HandContrib
			}
		}

		if level == 0 {
			dead := 0
			for _, seat := range seatOrder {
				dead += players[seat].HandContrib
				players[seat].HandContrib = 0
			}
			if dead > 0 {
				if len(layers) == 0 {
					panic("game: dead chips with no pot layer")
				}
				layers[len(layers)-1].amount += dead
			}
			return layers
		}

		var layer potLayer
		for _, seat := range seatOrder {
			p := players[seat]
			contrib := min(level, p.HandContrib)
			if contrib == 0 {
				continue
			}
			p.HandContrib -= contrib
			layer.amount += contrib
			if p.InHand() {
				layer.eligible = append(layer.eligible, seat)
			}
		}
		layers = append(layers, layer)
	}
}

// resolvePots distributes the layered pots. It returns winnings per seat,
// the set of seats whose hole cards are revealed, and the payout reason.
// Hand contributions are consumed in the process.
func resolvePots(players map[int]*Player, seatOrder []int, board []deck.Card) (map[int]int, map[int]bool, string) {
	payouts := make(map[int]int)
	reveal := make(map[int]bool)

	inHand := 0
	for _, p := range players {
		if p.InHand() {
			inHand++
		}
	}
	reason := ReasonShowdown
	if inHand <= 1 {
		reason = ReasonAllFolded
	}

	ranks := make(map[int]evaluator.HandRank)
	rankOf := func(seat int) evaluator.HandRank {
		if r, ok := ranks[seat]; ok {
			return r
		}
		cards := append(append([]deck.Card(nil), players[seat].HoleCards...), board...)
		r := evaluator.Rank(cards)
		ranks[seat] = r
		return r
	}

	for _, layer := range buildLayers(players, seatOrder) {
		winners := layer.eligible
		if len(layer.eligible) > 1 {
			winners = nil
			var best evaluator.HandRank
			for _, seat := range layer.eligible {
				r := rankOf(seat)
				switch {
				case len(winners) == 0 || evaluator.Compare(r, best) > 0:
					best = r
					winners = []int{seat}
				case evaluator.Compare(r, best) == 0:
					winners = append(winners, seat)
				}
			}
			// A layer with more than one eligible player was contested at
			// showdown, so everyone eligible for it shows their hand.
			if reason == ReasonShowdown {
				for _, seat := range layer.eligible {
					reveal[seat] = true
				}
			}
		}

		share := layer.amount / len(winners)
		remainder := layer.amount % len(winners)
		isWinner := make(map[int]bool, len(winners))
		for _, seat := range winners {
			payouts[seat] += share
			isWinner[seat] = true
		}

		// Odd chips go one at a time clockwise from the seat left of the
		// button.
		for i := 1; remainder > 0 && i <= len(seatOrder); i++ {
			seat := seatOrder[i%len(seatOrder)]
			if isWinner[seat] {
				payouts[seat]++
				remainder--
			}
		}
	}

	return payouts, reveal, reason
}
