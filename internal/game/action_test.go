package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		contrib    int
		chips      int
		hasOption  bool
		currentBet int
		minRaise   int
		raw        Action
		want       Action
	}{
		{
			name:  "fold is always a fold",
			chips: 200, currentBet: 10, minRaise: 10,
			raw:  Action{Kind: Fold},
			want: Action{Kind: Fold},
		},
		{
			name:    "check when matched",
			contrib: 10, chips: 190, currentBet: 10, minRaise: 10,
			raw:  Action{Kind: Check},
			want: Action{Kind: Check},
		},
		{
			name:    "check facing a bet becomes a fold",
			contrib: 2, chips: 198, currentBet: 10, minRaise: 8,
			raw:  Action{Kind: Check},
			want: Action{Kind: Fold},
		},
		{
			name:    "call when matched becomes a check",
			contrib: 10, chips: 190, currentBet: 10, minRaise: 10,
			raw:  Action{Kind: Call},
			want: Action{Kind: Check},
		},
		{
			name:    "call pays the difference",
			contrib: 2, chips: 198, currentBet: 10, minRaise: 8,
			raw:  Action{Kind: Call},
			want: Action{Kind: Bet, Amount: 8},
		},
		{
			name:    "call beyond the stack goes all-in",
			contrib: 0, chips: 5, currentBet: 50, minRaise: 48,
			raw:  Action{Kind: Call},
			want: Action{Kind: Bet, Amount: 5},
		},
		{
			name:    "all-in bets the whole stack",
			contrib: 2, chips: 73, currentBet: 10, minRaise: 8,
			raw:  Action{Kind: AllIn},
			want: Action{Kind: Bet, Amount: 73},
		},
		{
			name:  "zero bet with nothing to call is a check",
			chips: 200, currentBet: 0, minRaise: 2,
			raw:  Action{Kind: Bet, Amount: 0},
			want: Action{Kind: Check},
		},
		{
			name:    "zero bet with the option is a check",
			contrib: 2, chips: 198, hasOption: true, currentBet: 2, minRaise: 2,
			raw:  Action{Kind: Bet, Amount: 0},
			want: Action{Kind: Check},
		},
		{
			name:    "zero bet facing a bet is a fold",
			contrib: 2, chips: 198, currentBet: 10, minRaise: 8,
			raw:  Action{Kind: Bet, Amount: 0},
			want: Action{Kind: Fold},
		},
		{
			name:    "exact call passes through",
			contrib: 2, chips: 198, currentBet: 10, minRaise: 8,
			raw:  Action{Kind: Bet, Amount: 8},
			want: Action{Kind: Bet, Amount: 8},
		},
		{
			name:    "under-call is promoted to a call",
			contrib: 0, chips: 200, currentBet: 10, minRaise: 10,
			raw:  Action{Kind: Bet, Amount: 4},
			want: Action{Kind: Bet, Amount: 10},
		},
		{
			name:    "under-call promotion caps at the stack",
			contrib: 0, chips: 6, currentBet: 10, minRaise: 10,
			raw:  Action{Kind: Bet, Amount: 4},
			want: Action{Kind: Bet, Amount: 6},
		},
		{
			name:    "under-raise is promoted to a min-raise",
			contrib: 0, chips: 200, currentBet: 10, minRaise: 10,
			raw:  Action{Kind: Bet, Amount: 12},
			want: Action{Kind: Bet, Amount: 20},
		},
		{
			name:    "under-raise promotion caps at the stack",
			contrib: 0, chips: 15, currentBet: 10, minRaise: 10,
			raw:  Action{Kind: Bet, Amount: 12},
			want: Action{Kind: Bet, Amount: 15},
		},
		{
			name:    "exact min-raise passes through",
			contrib: 0, chips: 200, currentBet: 10, minRaise: 10,
			raw:  Action{Kind: Bet, Amount: 20},
			want: Action{Kind: Bet, Amount: 20},
		},
		{
			name:    "oversized raise caps at the stack",
			contrib: 0, chips: 15, currentBet: 10, minRaise: 10,
			raw:  Action{Kind: Bet, Amount: 30},
			want: Action{Kind: Bet, Amount: 15},
		},
		{
			name:  "opening bet passes through",
			chips: 200, currentBet: 0, minRaise: 2,
			raw:  Action{Kind: Bet, Amount: 6},
			want: Action{Kind: Bet, Amount: 6},
		},
		{
			name:  "opening bet below the minimum is promoted",
			chips: 200, currentBet: 0, minRaise: 2,
			raw:  Action{Kind: Bet, Amount: 1},
			want: Action{Kind: Bet, Amount: 2},
		},
		{
			name:  "blind posts the requested amount",
			chips: 200, currentBet: 0, minRaise: 2,
			raw:  Action{Kind: PostBlind, Amount: 2},
			want: Action{Kind: PostBlind, Amount: 2},
		},
		{
			name:  "short stack posts a partial blind",
			chips: 1, currentBet: 0, minRaise: 2,
			raw:  Action{Kind: PostBlind, Amount: 2},
			want: Action{Kind: PostBlind, Amount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &Player{
				StreetContrib: tt.contrib,
				Chips:         tt.chips,
				HasOption:     tt.hasOption,
			}
			got := normalize(tt.raw, p, tt.currentBet, tt.minRaise)
			require.Equal(t, tt.want, got)

			// Normalization is idempotent: feeding the result back through
			// the interpreter in the same state changes nothing.
			assert.Equal(t, got, normalize(got, p, tt.currentBet, tt.minRaise))
		})
	}
}

func TestNormalizeNeverExceedsStack(t *testing.T) {
	t.Parallel()

	p := &Player{StreetContrib: 3, Chips: 40}
	for amount := 0; amount <= 120; amount++ {
		got := normalize(Action{Kind: Bet, Amount: amount}, p, 25, 10)
		if got.Kind == Bet {
			assert.LessOrEqual(t, got.Amount, p.Chips, "raw bet %d", amount)
		}
	}
}
