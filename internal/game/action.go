package game

// ActionKind enumerates the closed set of player commands. The string forms
// used by clients belong to the protocol layer, not to this type.
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	AllIn
	Bet
	PostBlind
)

func (k ActionKind) String() string {
	return [...]string{"fold", "check", "call", "allin", "bet", "blind"}[k]
}

// Action is a tagged command with an optional chip amount. Amount is only
// meaningful for Bet and PostBlind.
type Action struct {
	Kind   ActionKind
	Amount int
}

// normalize maps a raw player-submitted action onto a legal one. The server
// never rejects betting intent; it clamps and re-interprets, which keeps the
// client protocol robust and removes an error path. The result is always one
// of Fold, Check, Bet or PostBlind, and re-normalizing a result yields the
// same action.
//
// It is pure with respect to the player's StreetContrib, Chips and HasOption
// and the street's currentBet and minRaise.
func normalize(a Action, p *Player, currentBet, minRaise int) Action {
	switch a.Kind {
	case Fold:
		return Action{Kind: Fold}

	case Check:
		if p.StreetContrib == currentBet {
			return Action{Kind: Check}
		}
		return Action{Kind: Fold}

	case Call:
		if p.StreetContrib == currentBet {
			return Action{Kind: Check}
		}
		return Action{Kind: Bet, Amount: min(p.Chips, currentBet-p.StreetContrib)}

	case AllIn:
		return Action{Kind: Bet, Amount: p.Chips}

	case Bet:
		return normalizeBet(a.Amount, p, currentBet, minRaise)

	case PostBlind:
		return Action{Kind: PostBlind, Amount: min(p.Chips, a.Amount)}
	}
	return Action{Kind: Fold}
}

func normalizeBet(amount int, p *Player, currentBet, minRaise int) Action {
	if amount <= 0 {
		// A zero bet is a check when a check is legal, a fold otherwise.
		if currentBet == 0 || (p.HasOption && p.StreetContrib == currentBet) {
			return Action{Kind: Check}
		}
		return Action{Kind: Fold}
	}

	total := p.StreetContrib + amount
	toCall := currentBet - p.StreetContrib

	switch {
	case total == currentBet:
		// A call.
		return Action{Kind: Bet, Amount: min(p.Chips, amount)}

	case total < currentBet:
		// Under-call promoted to a full call, capped at all-in.
		return Action{Kind: Bet, Amount: min(p.Chips, toCall)}

	default:
		raise := total - currentBet
		if raise < minRaise {
			// Under-raise promoted to a min-raise, capped at all-in.
			return Action{Kind: Bet, Amount: min(p.Chips, toCall+minRaise)}
		}
		return Action{Kind: Bet, Amount: min(p.Chips, amount)}
	}
}
