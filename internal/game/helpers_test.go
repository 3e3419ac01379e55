package game

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kevpoker/holdemd/internal/deck"
	"github.com/kevpoker/holdemd/internal/randutil"
)

// recorder is an in-memory sink with deterministic ordering.
type recorder struct {
	records []sinkRecord
}

type sinkRecord struct {
	seat int
	ev   Event
}

func (r *recorder) Send(seat int, ev Event) {
	r.records = append(r.records, sinkRecord{seat: seat, ev: ev})
}

// ofType returns every recorded event with the given info tag, in emission
// order, regardless of recipient, deduplicated per emission (broadcasts are
// recorded once per recipient).
func (r *recorder) ofType(info string) []Event {
	var out []Event
	var last Event
	for _, rec := range r.records {
		if rec.ev.Info() != info {
			continue
		}
		if reflect.DeepEqual(rec.ev, last) {
			continue
		}
		last = rec.ev
		out = append(out, rec.ev)
	}
	return out
}

// eventsFor returns the events delivered to one seat, in order.
func (r *recorder) eventsFor(seat int) []Event {
	var out []Event
	for _, rec := range r.records {
		if rec.seat == seat {
			out = append(out, rec.ev)
		}
	}
	return out
}

// scriptedGame builds a started-ready game with a fixed seat order
// (seat i at table position i) and a queue of stacked decks, one per hand.
func scriptedGame(t *testing.T, stacks []int, decks ...*deck.Deck) (*Game, *recorder) {
	t.Helper()

	rec := &recorder{}
	queue := decks
	g := New(
		WithRNG(randutil.New(42)),
		WithSink(rec),
		WithDeckFactory(func() *deck.Deck {
			require.NotEmpty(t, queue, "ran out of stacked decks")
			d := queue[0]
			queue = queue[1:]
			return d
		}),
	)
	for i := range stacks {
		_, _, err := g.AddPlayer(fmt.Sprintf("player-%d", i), "")
		require.NoError(t, err)
	}
	for i := range stacks {
		g.seatOrder[i] = i
		g.players[i].Chips = stacks[i]
	}
	return g, rec
}

// stackedDeck lays out a deck for one hand: five board cards first, then
// two hole cards per player in the deal order of that hand.
func stackedDeck(board []string, holes ...[2]string) *deck.Deck {
	var cards []deck.Card
	for _, s := range board {
		cards = append(cards, deck.MustParse(s))
	}
	for _, h := range holes {
		cards = append(cards, deck.MustParse(h[0]), deck.MustParse(h[1]))
	}
	return deck.Stacked(cards...)
}

// act submits a raw action for the given seat, asserting it is their turn.
func act(t *testing.T, g *Game, seat int, a Action) {
	t.Helper()
	require.Equal(t, seat, g.toAct, "unexpected actor")
	require.NoError(t, g.ActionBySecret(g.players[seat].Secret, a))
}

// checkInvariants asserts the quiescent-state invariants: chips are
// conserved and non-negative, and flag implications hold.
func checkInvariants(t *testing.T, g *Game, expectTotal int) {
	t.Helper()

	total := 0
	for seat, p := range g.players {
		require.GreaterOrEqual(t, p.Chips, 0, "seat %d chips", seat)
		require.GreaterOrEqual(t, p.StreetContrib, 0, "seat %d street contrib", seat)
		require.GreaterOrEqual(t, p.HandContrib, 0, "seat %d hand contrib", seat)
		total += p.Chips + p.StreetContrib + p.HandContrib

		if p.Eliminated {
			require.True(t, p.Folded, "seat %d eliminated implies folded", seat)
			require.Zero(t, p.Chips, "seat %d eliminated implies broke", seat)
		}
		if p.AllIn {
			require.Zero(t, p.Chips, "seat %d all-in implies no chips", seat)
			require.False(t, p.Eliminated, "seat %d all-in implies not yet eliminated", seat)
		}
		if p.CanAct() {
			require.LessOrEqual(t, p.StreetContrib, g.currentBet, "seat %d contributed past the current bet", seat)
		}
	}
	require.Equal(t, expectTotal, total, "chips not conserved")
}

// checkHandNumbersMonotone asserts the per-recipient event stream never
// goes backwards in hand number.
func checkHandNumbersMonotone(t *testing.T, rec *recorder, seats []int) {
	t.Helper()
	for _, seat := range seats {
		last := 0
		for _, ev := range rec.eventsFor(seat) {
			n, ok := handNumberOf(ev)
			if !ok {
				continue
			}
			require.GreaterOrEqual(t, n, last, "hand number went backwards for seat %d", seat)
			last = n
		}
	}
}

func handNumberOf(ev Event) (int, bool) {
	switch e := ev.(type) {
	case HoleCardInfo:
		return e.HandNumber, true
	case StreetInfo:
		return e.HandNumber, true
	case ToMoveInfo:
		return e.HandNumber, true
	case MoveInfo:
		return e.HandNumber, true
	case PayoutInfo:
		return e.HandNumber, true
	}
	return 0, false
}
