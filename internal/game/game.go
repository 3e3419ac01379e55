// Package game implements the hand-and-betting state machine for a single
// No-Limit Texas Hold'em table: seating, blinds, streets, raise sizing,
// all-ins, side pots and hand-to-hand transitions. The package is not
// internally concurrent; the dispatch layer serializes commands per Game.
package game

import (
	"errors"
	rand "math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/kevpoker/holdemd/internal/deck"
	"github.com/kevpoker/holdemd/internal/randutil"
)

const (
	smallBlind = 1
	bigBlind   = 2

	defaultStartingStack = 200
	defaultMaxPlayers    = 10
)

// Errors surfaced to the protocol layer. The strings are wire-visible
// reasons and must not change.
var (
	ErrAlreadyStarted   = errors.New("Game already started!")
	ErrBadConfigOption  = errors.New("Bad config option!")
	ErrGameFull         = errors.New("No space to join this game")
	ErrNotYourTurn      = errors.New("Not your turn!")
	ErrNotEnoughPlayers = errors.New("Not enough players to start")
)

// Street is one of the four betting rounds.
type Street int

const (
	PreFlop Street = iota
	Flop
	Turn
	River
)

func (s Street) String() string {
	return [...]string{"PreFlop", "Flop", "Turn", "River"}[s]
}

// DeckFactory produces a fresh dealable deck for each hand.
type DeckFactory func() *deck.Deck

// Game owns all state for one table. seatOrder[0] is the button; rotation
// is modeled by rotating seatOrder one place at the start of every hand.
type Game struct {
	rng         *rand.Rand
	sink        Sink
	deckFactory DeckFactory

	players   map[int]*Player
	seatOrder []int

	deck  *deck.Deck
	board []deck.Card

	street     Street
	toAct      int
	currentBet int
	minRaise   int
	handNumber int

	started  bool
	gameOver bool

	startingStack int
	maxPlayers    int
}

// Option configures a Game at construction time.
type Option func(*Game)

// WithRNG injects the randomness source used for deck shuffles and seat
// permutation, so tests run deterministically.
func WithRNG(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithSink sets the event sink.
func WithSink(sink Sink) Option {
	return func(g *Game) { g.sink = sink }
}

// WithDeckFactory overrides deck creation, letting tests stack known cards.
func WithDeckFactory(f DeckFactory) Option {
	return func(g *Game) { g.deckFactory = f }
}

// WithStartingStack sets the initial starting stack.
func WithStartingStack(n int) Option {
	return func(g *Game) { g.startingStack = n }
}

// WithMaxPlayers sets the initial player limit.
func WithMaxPlayers(n int) Option {
	return func(g *Game) { g.maxPlayers = n }
}

// New creates a Game in the Lobby state.
func New(opts ...Option) *Game {
	g := &Game{
		players:       make(map[int]*Player),
		startingStack: defaultStartingStack,
		maxPlayers:    defaultMaxPlayers,
		sink:          discardSink{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = randutil.New(time.Now().UnixNano())
	}
	if g.deckFactory == nil {
		g.deckFactory = func() *deck.Deck { return deck.New(g.rng) }
	}
	return g
}

// Configure applies a named configuration command. Recognized options are
// starting_stack, max_players and start (value ignored).
func (g *Game) Configure(option string, value int) error {
	switch option {
	case "starting_stack":
		return g.SetStartingStack(value)
	case "max_players":
		return g.SetPlayerLimit(value)
	case "start":
		return g.Start()
	default:
		return ErrBadConfigOption
	}
}

// SetStartingStack changes the starting stack. Players already seated are
// topped up or cut down to the new stack; nobody has played yet.
func (g *Game) SetStartingStack(n int) error {
	if g.started {
		return ErrAlreadyStarted
	}
	if n <= 0 {
		return ErrBadConfigOption
	}
	g.startingStack = n
	for _, p := range g.players {
		p.Chips = n
	}
	return nil
}

// SetPlayerLimit changes the seat limit. Limits below the current player
// count are rejected.
func (g *Game) SetPlayerLimit(n int) error {
	if g.started {
		return ErrAlreadyStarted
	}
	if n < len(g.players) {
		return ErrBadConfigOption
	}
	g.maxPlayers = n
	return nil
}

// AddPlayer seats a new player with a full starting stack and a fresh
// secret token, then re-draws the whole seating order uniformly at random
// so early joiners gain no positional advantage.
func (g *Game) AddPlayer(name, address string) (seat int, secret string, err error) {
	if g.started || len(g.players) == g.maxPlayers {
		return 0, "", ErrGameFull
	}

	seat = len(g.players)
	p := &Player{
		Seat:    seat,
		Name:    name,
		Address: address,
		Secret:  uuid.NewString(),
		Chips:   g.startingStack,
	}
	g.players[seat] = p
	g.seatOrder = append(g.seatOrder, seat)
	g.rng.Shuffle(len(g.seatOrder), func(i, j int) {
		g.seatOrder[i], g.seatOrder[j] = g.seatOrder[j], g.seatOrder[i]
	})
	return seat, p.Secret, nil
}

// Start leaves the Lobby and deals hand #1.
func (g *Game) Start() error {
	if g.started {
		return ErrAlreadyStarted
	}
	if len(g.players) < 2 {
		return ErrNotEnoughPlayers
	}
	g.started = true

	table := GameTableInfo{
		StartingStack: g.startingStack,
		SeatOrder:     append([]int(nil), g.seatOrder...),
		Button:        g.seatOrder[0],
	}
	for seat := 0; seat < len(g.players); seat++ {
		table.Players = append(table.Players, IDName{PlayerID: seat, Name: g.players[seat].Name})
	}
	for seat := 0; seat < len(g.players); seat++ {
		g.sendTo(seat, PlayerPrivateInfo{PlayerID: seat, SecretID: g.players[seat].Secret})
	}
	g.broadcast(table)

	g.newHand()
	return nil
}

// ActionBySecret applies a raw command on behalf of the player holding the
// secret token. It fails unless the token belongs to the player currently
// to act. Blinds are posted by the engine, never through this entry point.
func (g *Game) ActionBySecret(secret string, raw Action) error {
	if !g.started || g.gameOver {
		return ErrNotYourTurn
	}
	if g.players[g.toAct].Secret != secret {
		return ErrNotYourTurn
	}
	g.playerAction(raw)
	return nil
}

// TimeoutFold folds the player currently to act. The dispatch layer uses it
// to implement inactivity timeouts; interpreter clamping makes it always
// legal.
func (g *Game) TimeoutFold() {
	if !g.started || g.gameOver {
		return
	}
	g.playerAction(Action{Kind: Fold})
}

// Started reports whether the game has left the Lobby.
func (g *Game) Started() bool { return g.started }

// Over reports whether the game has finished.
func (g *Game) Over() bool { return g.gameOver }

// HandNumber returns the current hand counter.
func (g *Game) HandNumber() int { return g.handNumber }

// ToAct returns the seat id with current action.
func (g *Game) ToAct() int { return g.toAct }

// SeatOrder returns a copy of the current table order, button first.
func (g *Game) SeatOrder() []int {
	return append([]int(nil), g.seatOrder...)
}

// SeatBySecret resolves a secret token to a seat id.
func (g *Game) SeatBySecret(secret string) (int, bool) {
	for seat, p := range g.players {
		if p.Secret == secret {
			return seat, true
		}
	}
	return 0, false
}

// playerAction normalizes and applies a raw action for the player to act,
// then advances the machine: end the hand, end the street, or pass action.
func (g *Game) playerAction(raw Action) {
	p := g.players[g.toAct]
	act := normalize(raw, p, g.currentBet, g.minRaise)
	g.apply(p, act)

	switch {
	case g.isHandOver():
		g.endHand()
	case g.isStreetOver():
		g.nextStreet()
	default:
		g.toAct = g.nextPlayer(g.toAct)
		g.broadcast(ToMoveInfo{PlayerID: g.toAct, HandNumber: g.handNumber})
	}
}

// apply mutates seat and street state for a normalized action and emits the
// MoveInfo describing it.
func (g *Game) apply(p *Player, act Action) {
	switch act.Kind {
	case Check:
		p.HasOption = false

	case Fold:
		p.Folded = true
		p.HasOption = false

	case Bet:
		if p.StreetContrib+act.Amount > g.currentBet {
			g.minRaise = p.StreetContrib + act.Amount - g.currentBet
		}
		g.currentBet = max(g.currentBet, p.StreetContrib+act.Amount)
		p.StreetContrib += act.Amount
		p.Chips -= act.Amount
		p.HasOption = false

	case PostBlind:
		// Blinds do not move currentBet; newHand sets it to the big blind
		// once both are down, and the big blind keeps the option.
		p.StreetContrib += act.Amount
		p.Chips -= act.Amount
	}

	if (act.Kind == Bet || act.Kind == PostBlind) && p.Chips == 0 {
		p.AllIn = true
	}

	g.broadcast(MoveInfo{
		PlayerID:   p.Seat,
		MoveType:   moveType(act.Kind),
		Value:      act.Amount,
		HandNumber: g.handNumber,
	})
}

func moveType(k ActionKind) string {
	switch k {
	case Check:
		return MoveCheck
	case Fold:
		return MoveFold
	case Bet:
		return MoveBet
	case PostBlind:
		return MoveBlind
	}
	return MoveFold
}

// isStreetOver reports whether no player who can act still holds an option
// and every such player has matched the current bet.
func (g *Game) isStreetOver() bool {
	for _, seat := range g.seatOrder {
		p := g.players[seat]
		if !p.CanAct() {
			continue
		}
		if p.HasOption || p.StreetContrib != g.currentBet {
			return false
		}
	}
	return true
}

// isHandOver reports whether the hand has ended: river betting closed, at
// most one player left in the hand, or everyone remaining is all-in.
func (g *Game) isHandOver() bool {
	inHand, actable := 0, 0
	for _, p := range g.players {
		if p.InHand() {
			inHand++
			if !p.AllIn {
				actable++
			}
		}
	}
	if inHand <= 1 {
		return true
	}
	if actable == 0 {
		return true
	}
	return g.street == River && g.isStreetOver()
}

// nextPlayer scans the seat order strictly after from, wrapping once, for
// the first player who can act. Returns from when no such player exists.
func (g *Game) nextPlayer(from int) int {
	n := len(g.seatOrder)
	start := g.seatIndex(from)
	for i := 1; i <= n; i++ {
		seat := g.seatOrder[(start+i)%n]
		if g.players[seat].CanAct() {
			return seat
		}
	}
	return from
}

// prevPlayer is nextPlayer over the reversed seat order.
func (g *Game) prevPlayer(from int) int {
	n := len(g.seatOrder)
	start := g.seatIndex(from)
	for i := 1; i <= n; i++ {
		seat := g.seatOrder[(start-i+n)%n]
		if g.players[seat].CanAct() {
			return seat
		}
	}
	return from
}

func (g *Game) seatIndex(seat int) int {
	for i, s := range g.seatOrder {
		if s == seat {
			return i
		}
	}
	panic("game: seat not in seat order")
}

// newHand deals the next hand: fresh deck, board dealt face down, hole
// cards out, button rotated, blinds posted through the normal action path
// so clamping, all-in detection and event emission stay uniform.
func (g *Game) newHand() {
	g.handNumber++
	g.street = PreFlop
	g.currentBet = 0
	g.minRaise = bigBlind
	g.deck = g.deckFactory()
	g.board = g.deck.Deal(5)

	for _, seat := range g.seatOrder {
		p := g.players[seat]
		p.HasOption = false
		if p.Eliminated {
			continue
		}
		p.Folded = false
		p.AllIn = false
		p.StreetContrib = 0
		p.HandContrib = 0
		p.HoleCards = g.deck.Deal(2)
		g.sendTo(seat, HoleCardInfo{Cards: p.HoleCards, HandNumber: g.handNumber})
	}

	g.seatOrder = append(g.seatOrder[1:], g.seatOrder[0])
	button := g.seatOrder[0]

	sb := g.nextPlayer(button)
	if g.liveCount() == 2 {
		// Heads-up the button is the small blind.
		sb = g.nextPlayer(sb)
	}
	bb := g.nextPlayer(sb)
	g.players[bb].HasOption = true

	g.postBlind(sb, smallBlind)
	g.postBlind(bb, bigBlind)
	g.currentBet = bigBlind

	// Both blinds can be all-in straight away on short stacks.
	if g.isHandOver() {
		g.endHand()
		return
	}

	g.toAct = g.nextPlayer(bb)
	g.broadcast(StreetInfo{
		Street:     g.street.String(),
		Button:     button,
		HandNumber: g.handNumber,
	})
	g.broadcast(ToMoveInfo{PlayerID: g.toAct, HandNumber: g.handNumber})
}

// postBlind drives a forced blind through the normal action path.
func (g *Game) postBlind(seat, amount int) {
	g.toAct = seat
	p := g.players[seat]
	g.apply(p, normalize(Action{Kind: PostBlind, Amount: amount}, p, g.currentBet, g.minRaise))
}

// nextStreet rolls street contributions into hand contributions, advances
// the street, reveals board cards and hands action to the first player
// after the button. The closing actor is granted the option so the street
// cannot end before they act.
func (g *Game) nextStreet() {
	for _, seat := range g.seatOrder {
		p := g.players[seat]
		if p.Eliminated {
			continue
		}
		p.HandContrib += p.StreetContrib
		p.StreetContrib = 0
		p.HasOption = false
	}
	g.currentBet = 0
	g.minRaise = bigBlind
	g.street++

	g.toAct = g.nextPlayer(g.seatOrder[0])
	g.players[g.prevPlayer(g.toAct)].HasOption = true

	var revealed []deck.Card
	switch g.street {
	case Flop:
		revealed = g.board[:3]
	case Turn:
		revealed = g.board[3:4]
	case River:
		revealed = g.board[4:5]
	}
	g.broadcast(StreetInfo{
		Street:             g.street.String(),
		Button:             g.seatOrder[0],
		BoardCardsRevealed: revealed,
		HandNumber:         g.handNumber,
	})
	g.broadcast(ToMoveInfo{PlayerID: g.toAct, HandNumber: g.handNumber})
}

// endHand resolves the pots, pays winners, eliminates busted players and
// either deals the next hand or finishes the game.
func (g *Game) endHand() {
	for _, seat := range g.seatOrder {
		p := g.players[seat]
		if p.Eliminated {
			continue
		}
		p.HandContrib += p.StreetContrib
		p.StreetContrib = 0
	}

	payouts, reveal, reason := resolvePots(g.players, g.seatOrder, g.board)

	ev := PayoutInfo{Reason: reason, HandNumber: g.handNumber}
	for _, seat := range g.seatOrder {
		if amount := payouts[seat]; amount > 0 {
			g.players[seat].Chips += amount
			ev.Payouts = append(ev.Payouts, Payout{PlayerID: seat, Amount: amount})
		}
	}
	for _, seat := range g.seatOrder {
		if reveal[seat] {
			ev.HoleCards = append(ev.HoleCards, RevealedHand{PlayerID: seat, Cards: g.players[seat].HoleCards})
		}
	}
	g.broadcast(ev)

	for _, seat := range g.seatOrder {
		p := g.players[seat]
		if p.Eliminated {
			continue
		}
		p.AllIn = false
		p.HasOption = false
		p.HoleCards = nil
		if p.Chips == 0 {
			p.Eliminated = true
			p.Folded = true
			g.broadcast(PlayerEliminatedInfo{PlayerID: seat})
		}
	}

	if g.liveCount() == 1 {
		g.gameOver = true
		for _, seat := range g.seatOrder {
			if !g.players[seat].Eliminated {
				g.broadcast(GameOverInfo{WinningPlayer: seat})
				break
			}
		}
		return
	}
	g.newHand()
}

func (g *Game) liveCount() int {
	n := 0
	for _, p := range g.players {
		if !p.Eliminated {
			n++
		}
	}
	return n
}

// broadcast delivers an event to every non-eliminated player.
func (g *Game) broadcast(ev Event) {
	for _, seat := range g.seatOrder {
		if !g.players[seat].Eliminated {
			g.sink.Send(seat, ev)
		}
	}
}

func (g *Game) sendTo(seat int, ev Event) {
	g.sink.Send(seat, ev)
}
