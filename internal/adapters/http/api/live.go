package api

import "net/http"

// LiveHandler streams match snapshots over a websocket.
type LiveHandler struct {
	deps Dependencies
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps Dependencies) *LiveHandler {
	return &LiveHandler{deps: deps}
}

// HandleLive handles GET /matches/{id}/live requests. The first frame is
// the current snapshot; every later mutation follows.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Subscribe(w, r, r.PathValue("id")); err != nil {
		writeFailure(w, "api.live", err)
	}
}
