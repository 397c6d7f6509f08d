package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/domain/types"
)

// MatchesHandler handles match commands and reads.
type MatchesHandler struct {
	deps Dependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

type abandonRequest struct {
	Reason string `json:"reason"`
}

// HandleCreate handles POST /matches requests.
func (h *MatchesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_match"
	var req types.CreateMatchInput
	if err := decode(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.CreateMatch(r.Context(), req)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set("Location", "/matches/"+snap.ID)
	writeJSON(w, http.StatusCreated, snap)
}

// HandleList handles GET /matches requests.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Matches(r.Context()))
}

// HandleGet handles GET /matches/{id} requests.
func (h *MatchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_match"
	snap, err := h.deps.Match(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleScorecard handles GET /matches/{id}/scorecard requests.
func (h *MatchesHandler) HandleScorecard(w http.ResponseWriter, r *http.Request) {
	const op = "api.scorecard"
	sc, err := h.deps.Scorecard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// HandleStart handles POST /matches/{id}/start requests.
func (h *MatchesHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_match"
	var req scoring.StartInput
	if err := decode(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.StartMatch(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleBall handles POST /matches/{id}/balls requests. Resubmitting an
// event_id returns the current match with duplicate set.
func (h *MatchesHandler) HandleBall(w http.ResponseWriter, r *http.Request) {
	const op = "api.apply_ball"
	var req scoring.BallInput
	if err := decode(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Tag) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errMissing("event")))
		return
	}
	snap, dup, err := h.deps.ApplyBall(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	status := "applied"
	if dup {
		status = "duplicate"
	}
	writeJSON(w, http.StatusOK, ballResponse{Status: status, Duplicate: dup, Match: snap})
}

// HandleBowler handles POST /matches/{id}/bowler requests.
func (h *MatchesHandler) HandleBowler(w http.ResponseWriter, r *http.Request) {
	h.handlePlayer(w, r, "api.assign_bowler", h.deps.AssignBowler)
}

// HandleBatsman handles POST /matches/{id}/batsman requests.
func (h *MatchesHandler) HandleBatsman(w http.ResponseWriter, r *http.Request) {
	h.handlePlayer(w, r, "api.assign_batsman", h.deps.AssignBatsman)
}

func (h *MatchesHandler) handlePlayer(w http.ResponseWriter, r *http.Request, op string,
	assign func(ctx context.Context, matchID, playerID string) (model.Snapshot, error),
) {
	var req playerRequest
	if err := decode(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errMissing("player_id")))
		return
	}
	snap, err := assign(r.Context(), r.PathValue("id"), req.PlayerID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleInnings handles POST /matches/{id}/innings requests.
func (h *MatchesHandler) HandleInnings(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_innings"
	snap, err := h.deps.StartInnings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleAbandon handles POST /matches/{id}/abandon requests. The body is
// optional.
func (h *MatchesHandler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	const op = "api.abandon"
	var req abandonRequest
	if err := decode(w, r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.Abandon(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
