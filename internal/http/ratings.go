package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/notflix/internal/domain"
)

type pointsRequest struct {
	Points json.RawMessage `json:"points"`
}

// parsePoints accepts an integer given either as a JSON number or as a
// numeric string.
func parsePoints(raw json.RawMessage) (int, error) {
	text := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	points, err := strconv.Atoi(text)
	if err != nil {
		return 0, domain.InvalidInput(msgInvalidBody)
	}
	return points, nil
}

func (s *Server) readPoints(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req pointsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondError(w, domain.InvalidInput(msgInvalidBody))
		return 0, false
	}
	points, err := parsePoints(req.Points)
	if err == nil {
		err = domain.ValidatePoints(points)
	}
	if err != nil {
		s.respondError(w, err)
		return 0, false
	}
	return points, true
}

func (s *Server) handleAddRating(w http.ResponseWriter, r *http.Request) {
	claim, ok := s.claim(w, r)
	if !ok {
		return
	}
	points, ok := s.readPoints(w, r)
	if !ok {
		return
	}

	rating, err := s.deps.Ratings.Add(r.Context(), chi.URLParam(r, "tt_id"), claim.Username, points)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, rating)
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	claim, ok := s.claim(w, r)
	if !ok {
		return
	}
	points, ok := s.readPoints(w, r)
	if !ok {
		return
	}

	rating, err := s.deps.Ratings.Update(r.Context(), chi.URLParam(r, "tt_id"), claim.Username, points)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, rating)
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	claim, ok := s.claim(w, r)
	if !ok {
		return
	}

	if err := s.deps.Ratings.Delete(r.Context(), chi.URLParam(r, "tt_id"), claim.Username); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
