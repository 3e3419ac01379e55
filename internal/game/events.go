package game

import (
	"github.com/kevpoker/holdemd/internal/deck"
)

// Event is an outbound message mirroring a committed state transition. The
// Info tag names the event type in the wire envelope.
type Event interface {
	Info() string
}

// Sink receives events for delivery to a single player. The Game calls the
// sink only after the mutation the event describes has been applied; it
// never observes or depends on delivery completion.
type Sink interface {
	Send(playerID int, event Event)
}

// discardSink is the default sink when none is configured.
type discardSink struct{}

func (discardSink) Send(int, Event) {}

// IDName pairs a seat id with a display name.
type IDName struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
}

// PlayerPrivateInfo is sent to one player on start: their seat id and the
// secret token that authorizes their actions.
type PlayerPrivateInfo struct {
	PlayerID int    `json:"player_id"`
	SecretID string `json:"secret_id"`
}

func (PlayerPrivateInfo) Info() string { return "PlayerPrivateInfo" }

// GameTableInfo is broadcast on start with the table composition.
type GameTableInfo struct {
	StartingStack int      `json:"starting_stack"`
	SeatOrder     []int    `json:"seat_order"`
	Button        int      `json:"button"`
	Players       []IDName `json:"players"`
}

func (GameTableInfo) Info() string { return "GameTableInfo" }

// HoleCardInfo is sent privately to a player when their hole cards are dealt.
type HoleCardInfo struct {
	Cards      []deck.Card `json:"cards"`
	HandNumber int         `json:"hand_number"`
}

func (HoleCardInfo) Info() string { return "HoleCardInfo" }

// StreetInfo is broadcast when a street begins, carrying any newly revealed
// board cards (none preflop, three on the flop, one on the turn and river).
type StreetInfo struct {
	Street             string      `json:"street"`
	Button             int         `json:"button"`
	BoardCardsRevealed []deck.Card `json:"board_cards_revealed"`
	HandNumber         int         `json:"hand_number"`
}

func (StreetInfo) Info() string { return "StreetInfo" }

// ToMoveInfo is broadcast whenever the action moves to a player.
type ToMoveInfo struct {
	PlayerID   int `json:"player_id"`
	HandNumber int `json:"hand_number"`
}

func (ToMoveInfo) Info() string { return "ToMoveInfo" }

// MoveInfo is broadcast after every applied action, carrying the normalized
// move rather than the raw client submission.
type MoveInfo struct {
	PlayerID   int    `json:"player_id"`
	MoveType   string `json:"move_type"` // Check, Fold, Bet or Blind
	Value      int    `json:"value"`
	HandNumber int    `json:"hand_number"`
}

func (MoveInfo) Info() string { return "MoveInfo" }

// Payout is one player's winnings from a resolved hand.
type Payout struct {
	PlayerID int `json:"player_id"`
	Amount   int `json:"amount"`
}

// RevealedHand is a player's hole cards shown at showdown.
type RevealedHand struct {
	PlayerID int         `json:"player_id"`
	Cards    []deck.Card `json:"cards"`
}

// PayoutInfo is broadcast when a hand ends. Hole cards appear only for
// players that contested a pot at showdown; folded players and the sole
// survivor of a fold-out stay hidden.
type PayoutInfo struct {
	Reason     string         `json:"reason"` // Showdown or AllFolded
	Payouts    []Payout       `json:"payouts"`
	HoleCards  []RevealedHand `json:"hole_cards"`
	HandNumber int            `json:"hand_number"`
}

func (PayoutInfo) Info() string { return "PayoutInfo" }

// PlayerEliminatedInfo is broadcast exactly once when a player busts.
type PlayerEliminatedInfo struct {
	PlayerID int `json:"player_id"`
}

func (PlayerEliminatedInfo) Info() string { return "PlayerEliminatedInfo" }

// GameOverInfo is broadcast when only one player has chips left.
type GameOverInfo struct {
	WinningPlayer int `json:"winning_player"`
}

func (GameOverInfo) Info() string { return "GameOverInfo" }

const (
	// PayoutInfo reasons.
	ReasonShowdown  = "Showdown"
	ReasonAllFolded = "AllFolded"

	// MoveInfo move types.
	MoveCheck = "Check"
	MoveFold  = "Fold"
	MoveBet   = "Bet"
	MoveBlind = "Blind"
)
