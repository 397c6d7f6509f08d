// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/domain/types"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateMatch(ctx context.Context, in types.CreateMatchInput) (model.Snapshot, error)
	StartMatch(ctx context.Context, matchID string, in scoring.StartInput) (model.Snapshot, error)
	ApplyBall(ctx context.Context, matchID string, in scoring.BallInput) (model.Snapshot, bool, error)
	AssignBowler(ctx context.Context, matchID, playerID string) (model.Snapshot, error)
	AssignBatsman(ctx context.Context, matchID, playerID string) (model.Snapshot, error)
	StartInnings(ctx context.Context, matchID string) (model.Snapshot, error)
	Abandon(ctx context.Context, matchID, reason string) (model.Snapshot, error)

	// Read operations expose match projections.
	Match(ctx context.Context, matchID string) (model.Snapshot, error)
	Matches(ctx context.Context) []model.Summary
	Scorecard(ctx context.Context, matchID string) (types.Scorecard, error)

	// Subscribe upgrades the request to a live snapshot stream.
	Subscribe(w http.ResponseWriter, r *http.Request, matchID string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	matchesHandler *MatchesHandler
	liveHandler    *LiveHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		matchesHandler: NewMatchesHandler(deps),
		liveHandler:    NewLiveHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	m := s.matchesHandler
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /matches", MetricsMiddleware(m.HandleCreate, "matches"))
	mux.HandleFunc("GET /matches", MetricsMiddleware(m.HandleList, "matches"))
	mux.HandleFunc("GET /matches/{id}", MetricsMiddleware(m.HandleGet, "match"))
	mux.HandleFunc("GET /matches/{id}/scorecard", MetricsMiddleware(m.HandleScorecard, "scorecard"))
	mux.HandleFunc("POST /matches/{id}/start", MetricsMiddleware(m.HandleStart, "start"))
	mux.HandleFunc("POST /matches/{id}/balls", MetricsMiddleware(m.HandleBall, "balls"))
	mux.HandleFunc("POST /matches/{id}/bowler", MetricsMiddleware(m.HandleBowler, "bowler"))
	mux.HandleFunc("POST /matches/{id}/batsman", MetricsMiddleware(m.HandleBatsman, "batsman"))
	mux.HandleFunc("POST /matches/{id}/innings", MetricsMiddleware(m.HandleInnings, "innings"))
	mux.HandleFunc("POST /matches/{id}/abandon", MetricsMiddleware(m.HandleAbandon, "abandon"))
	mux.HandleFunc("GET /matches/{id}/live", MetricsMiddleware(s.liveHandler.HandleLive, "live"))
}

type ballResponse struct {
	Status    string         `json:"status"`
	Duplicate bool           `json:"duplicate"`
	Match     model.Snapshot `json:"match"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure answers with the status err classifies to.
func writeFailure(w http.ResponseWriter, op string, err error) {
	err = tag(op, err)
	status, code := classify(err)
	writeError(w, status, code, err)
}

// decode reads a JSON body into v. An empty body leaves v untouched when
// optional is set.
func decode(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
