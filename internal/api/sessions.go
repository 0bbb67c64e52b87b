package api

import (
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
	"github.com/MikeSquared-Agency/Verdict/internal/session"
	"github.com/MikeSquared-Agency/Verdict/internal/store"
)

type SessionsHandler struct {
	sessions *session.Manager
}

func NewSessionsHandler(m *session.Manager) *SessionsHandler {
	return &SessionsHandler{sessions: m}
}

type CreateSessionRequest struct {
	Name           string            `json:"name" validate:"max=200"`
	ExcludeUnrated *bool             `json:"exclude_unrated,omitempty"`
	Snapshot       *scoring.Snapshot `json:"snapshot,omitempty"`
}

// Create handles POST /api/v1/sessions. An empty body starts an empty matrix.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if !decode(w, r, &req) {
			return
		}
	}

	v, err := h.sessions.Create(r.Context(), session.CreateRequest{
		Name:           req.Name,
		Snapshot:       req.Snapshot,
		ExcludeUnrated: req.ExcludeUnrated,
	})
	if err != nil {
		// a snapshot that fails to replay is a bad payload, not a missing resource
		if req.Snapshot != nil && statusFor(err) != http.StatusInternalServerError {
			writeError(w, http.StatusUnprocessableEntity, "invalid snapshot: "+err.Error())
			return
		}
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.SessionFilter{
		Name: r.URL.Query().Get("name"),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			filter.Limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil {
			filter.Offset = n
		}
	}

	summaries, err := h.sessions.List(r.Context(), filter)
	if err != nil {
		writeErr(w, err)
		return
	}
	if summaries == nil {
		summaries = []session.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	v, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/v1/sessions/{id}/history?limit=
func (h *SessionsHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.sessions.History(r.Context(), id, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	if events == nil {
		events = []*store.SessionEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}
