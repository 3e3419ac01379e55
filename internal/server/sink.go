package server

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/kevpoker/holdemd/internal/game"
)

const outboxDepth = 64

// CallbackSink delivers events to players over their registered callback
// endpoints, mirroring them to a websocket when one is attached. Delivery is
// fire-and-forget, but each recipient has a single worker draining a queue
// so their events arrive in emission order.
type CallbackSink struct {
	logger *log.Logger
	client *http.Client

	mu    sync.Mutex
	boxes map[int]*outbox
}

// NewCallbackSink creates a sink with a short per-request timeout so a slow
// client cannot stall its own queue indefinitely.
func NewCallbackSink(logger *log.Logger) *CallbackSink {
	return &CallbackSink{
		logger: logger,
		client: &http.Client{Timeout: 3 * time.Second},
		boxes:  make(map[int]*outbox),
	}
}

// Register creates the delivery queue for a seat. An empty address means the
// player receives events only over an attached websocket.
func (s *CallbackSink) Register(seat int, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boxes[seat]; ok {
		return
	}
	b := &outbox{
		logger: s.logger.With("seat", seat),
		client: s.client,
		addr:   normalizeAddress(address),
		ch:     make(chan []byte, outboxDepth),
	}
	s.boxes[seat] = b
	go b.run()
}

// AttachWS routes the seat's event stream to a websocket connection. Any
// previously attached connection is closed.
func (s *CallbackSink) AttachWS(seat int, conn *websocket.Conn) bool {
	s.mu.Lock()
	b, ok := s.boxes[seat]
	s.mu.Unlock()
	if !ok {
		return false
	}
	b.attach(conn)
	return true
}

// Send implements game.Sink. Events for unknown seats are dropped; a full
// queue drops the event rather than block the game.
func (s *CallbackSink) Send(seat int, ev game.Event) {
	payload, err := marshalEvent(ev)
	if err != nil {
		s.logger.Error("failed to marshal event", "event", ev.Info(), "error", err)
		return
	}

	s.mu.Lock()
	b, ok := s.boxes[seat]
	s.mu.Unlock()
	if !ok {
		return
	}

	select {
	case b.ch <- payload:
	default:
		b.logger.Warn("outbox full, dropping event", "event", ev.Info())
	}
}

// Close stops all delivery workers.
func (s *CallbackSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for seat, b := range s.boxes {
		close(b.ch)
		delete(s.boxes, seat)
	}
}

// outbox is the per-recipient delivery worker.
type outbox struct {
	logger *log.Logger
	client *http.Client
	addr   string
	ch     chan []byte

	mu sync.Mutex
	ws *websocket.Conn
}

func (b *outbox) run() {
	for payload := range b.ch {
		if b.addr != "" {
			b.post(payload)
		}
		b.push(payload)
	}
	b.attach(nil)
}

func (b *outbox) post(payload []byte) {
	resp, err := b.client.Post(b.addr, "application/json", bytes.NewReader(payload))
	if err != nil {
		b.logger.Debug("callback delivery failed", "error", err)
		return
	}
	_ = resp.Body.Close()
}

func (b *outbox) push(payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ws == nil {
		return
	}
	if err := b.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		b.logger.Debug("websocket delivery failed, detaching", "error", err)
		_ = b.ws.Close()
		b.ws = nil
	}
}

func (b *outbox) attach(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ws != nil {
		_ = b.ws.Close()
	}
	b.ws = conn
}

func normalizeAddress(addr string) string {
	if addr == "" {
		return ""
	}
	if !strings.Contains(addr, "://") {
		return "http://" + addr
	}
	return addr
}
