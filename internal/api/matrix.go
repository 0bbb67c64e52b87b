package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Verdict/internal/session"
)

// MatrixHandler exposes the matrix mutators. Every successful call answers
// with the refreshed results.
type MatrixHandler struct {
	sessions *session.Manager
}

func NewMatrixHandler(m *session.Manager) *MatrixHandler {
	return &MatrixHandler{sessions: m}
}

type NameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type CriterionRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Continuous bool   `json:"continuous"`
}

type WeightRequest struct {
	Weight *float64 `json:"weight" validate:"required"`
}

type RatingRequest struct {
	Value *float64 `json:"value" validate:"required"`
}

type RatingsRequest struct {
	Ratings map[string]map[string]float64 `json:"ratings" validate:"required,min=1"`
}

func (h *MatrixHandler) AddChoice(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req NameRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, http.StatusCreated)(h.sessions.AddChoice(r.Context(), id, req.Name))
}

func (h *MatrixHandler) RemoveChoice(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK)(h.sessions.RemoveChoice(r.Context(), id, pathParam(r, "name")))
}

func (h *MatrixHandler) AddCriterion(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req CriterionRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, http.StatusCreated)(h.sessions.AddCriterion(r.Context(), id, req.Name, req.Continuous))
}

func (h *MatrixHandler) RemoveCriterion(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK)(h.sessions.RemoveCriterion(r.Context(), id, pathParam(r, "name")))
}

// SetWeight handles PUT /api/v1/sessions/{id}/weights/{criterion}
func (h *MatrixHandler) SetWeight(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req WeightRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, http.StatusOK)(h.sessions.SetWeight(r.Context(), id, pathParam(r, "criterion"), *req.Weight))
}

func (h *MatrixHandler) ClearWeight(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK)(h.sessions.ClearWeight(r.Context(), id, pathParam(r, "criterion")))
}

// SetRating handles PUT /api/v1/sessions/{id}/ratings/{choice}/{criterion}
func (h *MatrixHandler) SetRating(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req RatingRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, http.StatusOK)(h.sessions.SetRating(r.Context(), id,
		pathParam(r, "choice"), pathParam(r, "criterion"), *req.Value))
}

func (h *MatrixHandler) ClearRating(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK)(h.sessions.ClearRating(r.Context(), id,
		pathParam(r, "choice"), pathParam(r, "criterion")))
}

// SetRatings handles PUT /api/v1/sessions/{id}/ratings with a
// choice -> criterion -> value map, applied all or nothing.
func (h *MatrixHandler) SetRatings(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req RatingsRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, http.StatusOK)(h.sessions.RateChoices(r.Context(), id, req.Ratings))
}

func (h *MatrixHandler) respond(w http.ResponseWriter, status int) func(*session.Results, error) {
	return func(res *session.Results, err error) {
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, status, res)
	}
}
