package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Verdict/internal/session"
)

type ResultsHandler struct {
	sessions *session.Manager
}

func NewResultsHandler(m *session.Manager) *ResultsHandler {
	return &ResultsHandler{sessions: m}
}

func (h *ResultsHandler) Results(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	res, err := h.sessions.Results(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Choice handles GET /api/v1/sessions/{id}/results/{choice}
func (h *ResultsHandler) Choice(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	res, err := h.sessions.Breakdown(r.Context(), id, pathParam(r, "choice"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
