// Package api is the HTTP layer: one query-action endpoint in the game
// platform's protocol, plus a health check. Responses are JSON, or JSONP when
// the caller supplies a callback, for cross-origin script-tag consumption.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"factloop/pkg/decision"
	"factloop/pkg/game"
	"factloop/pkg/tile"
)

// GameService is the orchestrator behind the endpoint.
type GameService interface {
	Describe(ctx context.Context) (game.Description, error)
	Tiles(ctx context.Context, num int, lang string) ([]tile.Tile, error)
	LogDecision(ctx context.Context, player, qNumber string, d decision.Decision) error
}

// Server is the HTTP API server.
type Server struct {
	svc      GameService
	maxBatch int
	mux      *http.ServeMux
}

// New creates a new Server. maxBatch caps the num parameter of a tiles
// request; <= 0 selects 50.
func New(svc GameService, maxBatch int) *Server {
	if maxBatch <= 0 {
		maxBatch = 50
	}
	s := &Server{
		svc:      svc,
		maxBatch: maxBatch,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /", s.withRequestLog(http.HandlerFunc(s.handleAction)))
}

// handleAction dispatches on the action query parameter. The platform treats
// every reply as 200-with-body, so failures inside an action are logged and
// converted into best-effort bodies rather than HTTP error statuses.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	callback := q.Get("callback")

	switch q.Get("action") {
	case "desc":
		s.handleDesc(w, r, callback)
	case "tiles":
		s.handleTiles(w, r, callback)
	case "log_action":
		s.handleLogAction(w, r, callback)
	default:
		writeReply(w, callback, map[string]string{"status": "No valid action!"})
	}
}

func (s *Server) handleDesc(w http.ResponseWriter, r *http.Request, callback string) {
	d, err := s.svc.Describe(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("describe failed")
		writeReply(w, callback, map[string]string{"status": "game data not ready"})
		return
	}
	writeReply(w, callback, d)
}

func (s *Server) handleTiles(w http.ResponseWriter, r *http.Request, callback string) {
	q := r.URL.Query()
	num, err := strconv.Atoi(q.Get("num"))
	if err != nil || num < 1 {
		num = 1
	}
	if num > s.maxBatch {
		num = s.maxBatch
	}

	tiles, err := s.svc.Tiles(r.Context(), num, q.Get("lang"))
	if err != nil {
		log.Error().Err(err).Msg("tiles request failed")
		tiles = nil
	}
	if tiles == nil {
		tiles = []tile.Tile{}
	}
	writeReply(w, callback, map[string][]tile.Tile{"tiles": tiles})
}

// handleLogAction always acknowledges with a success-shaped body: a logging
// hiccup must never block the player from proceeding. Failures only surface
// in the server log.
func (s *Server) handleLogAction(w http.ResponseWriter, r *http.Request, callback string) {
	q := r.URL.Query()
	player := q.Get("user")
	qNumber := q.Get("tile")

	d, err := decision.Parse(q.Get("decision"))
	switch {
	case err != nil:
		log.Warn().Err(err).Str("user", player).Str("tile", qNumber).Msg("log_action with bad decision")
	case player == "" || qNumber == "":
		log.Warn().Str("user", player).Str("tile", qNumber).Msg("log_action missing user or tile")
	default:
		if err := s.svc.LogDecision(r.Context(), player, qNumber, d); err != nil {
			log.Error().Err(err).Str("user", player).Str("tile", qNumber).Msg("decision logging failed")
		}
	}
	writeReply(w, callback, map[string]string{"status": "logging info"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
