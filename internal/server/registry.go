package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/kevpoker/holdemd/internal/game"
)

// Registry maps game names to handles. Each handle carries its own lock, so
// commands against independent tables never serialize against each other.
type Registry struct {
	logger   *log.Logger
	clock    quartz.Clock
	timeout  time.Duration
	defaults TableDefaults

	mu    sync.RWMutex
	games map[string]*Handle
}

// NewRegistry creates an empty registry. timeout is the per-turn inactivity
// budget; zero disables auto-folding.
func NewRegistry(logger *log.Logger, clock quartz.Clock, timeout time.Duration, defaults TableDefaults) *Registry {
	return &Registry{
		logger:   logger,
		clock:    clock,
		timeout:  timeout,
		defaults: defaults,
		games:    make(map[string]*Handle),
	}
}

// Get returns the handle for the named game, creating a Lobby game with the
// configured defaults on first reference.
func (r *Registry) Get(name string) *Handle {
	r.mu.RLock()
	h, ok := r.games[name]
	r.mu.RUnlock()
	if ok {
		return h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.games[name]; ok {
		return h
	}

	sink := NewCallbackSink(r.logger.WithPrefix("deliver").With("game", name))
	h = &Handle{
		name: name,
		sink: sink,
		turns: turnClock{
			clock:   r.clock,
			timeout: r.timeout,
		},
		logger: r.logger.With("game", name),
	}
	h.game = game.New(
		game.WithSink(observedSink{inner: sink, handle: h}),
		game.WithStartingStack(r.defaults.StartingStack),
		game.WithMaxPlayers(r.defaults.MaxPlayers),
	)
	r.games[name] = h
	r.logger.Info("created game", "game", name)
	return h
}

// Close shuts down delivery for every game.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.games {
		h.turns.disarm()
		h.sink.Close()
	}
}

// Handle is one registered game plus its delivery sink and turn timer. All
// game access goes through Do, which holds the handle's lock for the
// duration of the command.
type Handle struct {
	name   string
	logger *log.Logger
	sink   *CallbackSink

	mu    sync.Mutex
	game  *game.Game
	turns turnClock
}

// Do runs fn with exclusive access to the game.
func (h *Handle) Do(fn func(*game.Game) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.game)
}

// Sink exposes the handle's delivery sink for registration and websocket
// attachment.
func (h *Handle) Sink() *CallbackSink {
	return h.sink
}

// onEvent watches the outbound stream to drive the turn timer. Called once
// per recipient during emission; the actor's own copy is used to dedupe.
func (h *Handle) onEvent(seat int, ev game.Event) {
	switch e := ev.(type) {
	case game.ToMoveInfo:
		if seat == e.PlayerID {
			h.armTurnTimer()
		}
	case game.GameOverInfo:
		h.turns.disarm()
	}
}

// armTurnTimer schedules an auto-fold for the player now to act. A later
// arm or disarm invalidates the pending fold.
func (h *Handle) armTurnTimer() {
	seq, d, ok := h.turns.arm()
	if !ok {
		return
	}
	h.turns.schedule(d, func() {
		if !h.turns.current(seq) {
			return
		}
		_ = h.Do(func(g *game.Game) error {
			if h.turns.current(seq) {
				h.logger.Info("turn timed out, folding", "seat", g.ToAct())
				g.TimeoutFold()
			}
			return nil
		})
	})
}

// observedSink forwards events to the delivery sink and mirrors them to the
// handle so the dispatch layer can react to the stream it emits.
type observedSink struct {
	inner  game.Sink
	handle *Handle
}

func (o observedSink) Send(seat int, ev game.Event) {
	o.inner.Send(seat, ev)
	o.handle.onEvent(seat, ev)
}

// turnClock tracks the pending auto-fold timer. The sequence number fences
// off stale timer callbacks that lost the race with a real action.
type turnClock struct {
	clock   quartz.Clock
	timeout time.Duration

	mu    sync.Mutex
	seq   int
	timer *quartz.Timer
}

func (t *turnClock) arm() (seq int, d time.Duration, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.timeout <= 0 {
		return 0, 0, false
	}
	return t.seq, t.timeout, true
}

func (t *turnClock) schedule(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = t.clock.AfterFunc(d, fn)
}

func (t *turnClock) disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *turnClock) current(seq int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq == seq
}
