package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Verdict/internal/session"
)

type AdminHandler struct {
	sessions *session.Manager
}

func NewAdminHandler(m *session.Manager) *AdminHandler {
	return &AdminHandler{sessions: m}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sessions.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Evict drops a live session from memory. Its stored copy is untouched.
func (h *AdminHandler) Evict(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Evict(id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "evicted", "session_id": id.String()})
}
