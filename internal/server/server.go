package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/kevpoker/holdemd/internal/game"
)

// Server is the HTTP dispatch surface: registration, configuration and
// action endpoints plus the websocket event stream. It owns the registry of
// games and the callback delivery sinks.
type Server struct {
	cfg      *Config
	logger   *log.Logger
	registry *Registry
	upgrader websocket.Upgrader
	http     *http.Server
}

// New creates a server. The clock drives turn timeouts and is injectable so
// tests can advance time synthetically.
func New(cfg *Config, logger *log.Logger, clock quartz.Clock) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.WithPrefix("server"),
		registry: NewRegistry(
			logger,
			clock,
			time.Duration(cfg.Server.TurnTimeoutSeconds)*time.Second,
			*cfg.Defaults,
		),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.http = &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: s.Handler(),
	}
	return s
}

// Handler returns the routing mux; tests drive it directly.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /games/{game}/config", s.handleConfig)
	mux.HandleFunc("POST /games/{game}/register", s.handleRegister)
	mux.HandleFunc("POST /games/{game}/action", s.handleAction)
	mux.HandleFunc("GET /games/{game}/ws", s.handleWS)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.http.Shutdown(shutdownCtx)
		s.registry.Close()
		return err
	})

	return g.Wait()
}

type configRequest struct {
	Config string `json:"config"`
	Value  int    `json:"value"`
}

type registerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type registerResponse struct {
	Status   string `json:"status"`
	PlayerID int    `json:"player_id"`
	SecretID string `json:"secret_id"`
}

type actionRequest struct {
	SecretID string `json:"secret_id"`
	Action   string `json:"action"`
	Value    int    `json:"value"`
}

type statusResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if !s.decode(w, r, &req) {
		return
	}

	h := s.registry.Get(r.PathValue("game"))
	err := h.Do(func(g *game.Game) error {
		return g.Configure(req.Config, req.Value)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("configured game", "game", h.name, "option", req.Config, "value", req.Value)
	s.writeOK(w)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	h := s.registry.Get(r.PathValue("game"))
	var seat int
	var secret string
	err := h.Do(func(g *game.Game) error {
		var err error
		seat, secret, err = g.AddPlayer(req.Name, req.Address)
		if err != nil {
			return err
		}
		h.Sink().Register(seat, req.Address)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("player registered", "game", h.name, "seat", seat, "name", req.Name)
	s.writeJSON(w, registerResponse{Status: "ok", PlayerID: seat, SecretID: secret})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !s.decode(w, r, &req) {
		return
	}

	act, ok := parseAction(req.Action, req.Value)
	if !ok {
		// Unrecognized verbs are deliberate no-ops.
		s.logger.Debug("ignoring unknown action verb", "verb", req.Action)
		s.writeOK(w)
		return
	}

	h := s.registry.Get(r.PathValue("game"))
	err := h.Do(func(g *game.Game) error {
		return g.ActionBySecret(req.SecretID, act)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeOK(w)
}

// parseAction maps a protocol verb onto the game's action variant.
func parseAction(verb string, value int) (game.Action, bool) {
	switch verb {
	case "check":
		return game.Action{Kind: game.Check}, true
	case "call":
		return game.Action{Kind: game.Call}, true
	case "fold":
		return game.Action{Kind: game.Fold}, true
	case "allin":
		return game.Action{Kind: game.AllIn}, true
	case "bet":
		return game.Action{Kind: game.Bet, Amount: value}, true
	default:
		return game.Action{}, false
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	h := s.registry.Get(r.PathValue("game"))
	secret := r.URL.Query().Get("secret")

	seat := -1
	_ = h.Do(func(g *game.Game) error {
		if id, ok := g.SeatBySecret(secret); ok {
			seat = id
		}
		return nil
	})
	if seat < 0 {
		http.Error(w, "unknown secret", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	if !h.Sink().AttachWS(seat, conn) {
		_ = conn.Close()
		return
	}
	s.logger.Info("websocket attached", "game", h.name, "seat", seat)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, statusResponse{Status: "error", Reason: "malformed request"})
		return false
	}
	return true
}

func (s *Server) writeOK(w http.ResponseWriter) {
	s.writeJSON(w, statusResponse{Status: "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusResponse{Status: "error", Reason: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}
