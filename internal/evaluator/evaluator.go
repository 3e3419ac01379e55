// Package evaluator ranks poker hands of 5 to 7 cards. Ranking is delegated
// to the chehsunliu/poker lookup tables; this package only adapts our card
// type and flips the comparison so that a greater HandRank is a better hand.
package evaluator

import (
	chpoker "github.com/chehsunliu/poker"

	"github.com/kevpoker/holdemd/internal/deck"
)

// HandRank is a total order over 5-to-7-card hands. Higher is better; equal
// values are exact ties under the rules of hold'em.
type HandRank int32

// Rank evaluates the best 5-card hand contained in the given 5 to 7 cards.
func Rank(cards []deck.Card) HandRank {
	converted := make([]chpoker.Card, len(cards))
	for i, c := range cards {
		converted[i] = chpoker.NewCard(c.String())
	}
	// chehsunliu ranks run 1 (royal flush) .. 7462 (worst high card), lower
	// is better. Negate so callers can compare with > and ==.
	return HandRank(-chpoker.Evaluate(converted))
}

// Compare returns 1 if a beats b, -1 if b beats a, and 0 on a tie.
func Compare(a, b HandRank) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// Describe returns a human-readable class for the rank, e.g. "Full House".
func Describe(r HandRank) string {
	return chpoker.RankString(int32(-r))
}
