package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
	"github.com/MikeSquared-Agency/Verdict/internal/session"
)

type CurvesHandler struct {
	sessions *session.Manager
}

func NewCurvesHandler(m *session.Manager) *CurvesHandler {
	return &CurvesHandler{sessions: m}
}

type PointRequest struct {
	Value *float64 `json:"value" validate:"required"`
	Score *float64 `json:"score" validate:"required"`
}

type MovePointRequest struct {
	OldValue *float64 `json:"old_value" validate:"required"`
	Value    *float64 `json:"value" validate:"required"`
	Score    *float64 `json:"score" validate:"required"`
}

type LookupResponse struct {
	Criterion string   `json:"criterion"`
	Value     *float64 `json:"value"`
	Score     *float64 `json:"score"`
}

func (h *CurvesHandler) Points(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	pts, err := h.sessions.CurvePoints(r.Context(), id, pathParam(r, "criterion"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if pts == nil {
		pts = []scoring.Point{}
	}
	writeJSON(w, http.StatusOK, pts)
}

func (h *CurvesHandler) AddPoint(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req PointRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.sessions.AddPoint(r.Context(), id, pathParam(r, "criterion"), *req.Value, *req.Score)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *CurvesHandler) MovePoint(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req MovePointRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.sessions.MovePoint(r.Context(), id, pathParam(r, "criterion"), *req.OldValue, *req.Value, *req.Score)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RemovePoint handles DELETE .../points?value=
func (h *CurvesHandler) RemovePoint(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	value, ok := queryFloat(w, r, "value")
	if !ok {
		return
	}
	res, err := h.sessions.RemovePoint(r.Context(), id, pathParam(r, "criterion"), value)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Lookup maps ?value= to a score, or ?score= back to the smallest value
// reaching it. An unreachable score answers with a null value.
func (h *CurvesHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	criterion := pathParam(r, "criterion")

	if r.URL.Query().Has("score") {
		score, ok := queryFloat(w, r, "score")
		if !ok {
			return
		}
		value, found, err := h.sessions.ReverseLookup(r.Context(), id, criterion, score)
		if err != nil {
			writeErr(w, err)
			return
		}
		resp := LookupResponse{Criterion: criterion, Score: &score}
		if found {
			resp.Value = &value
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	value, ok := queryFloat(w, r, "value")
	if !ok {
		return
	}
	score, err := h.sessions.Lookup(r.Context(), id, criterion, value)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LookupResponse{Criterion: criterion, Value: &value, Score: &score})
}
