package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/notflix/internal/auth"
	"github.com/Clark-Hu/notflix/internal/domain"
)

const (
	msgMovieNotFound = "Movie not found."
	msgNotYetRated   = "Movie not found/yet rated."
)

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.deps.Movies.List(r.Context(), pageFrom(r))
	if err != nil {
		s.respondError(w, domain.StoreFailure(err))
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(movies))
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	ttID := chi.URLParam(r, "tt_id")
	movie, err := s.deps.Movies.Get(r.Context(), ttID)
	if err != nil {
		s.respondError(w, lookupError(err, msgMovieNotFound))
		return
	}
	s.respondJSON(w, http.StatusOK, movie)
}

// handleListRatedMovies lists every movie that has an average rating.
func (s *Server) handleListRatedMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.deps.Movies.ListRated(r.Context(), pageFrom(r))
	if err != nil {
		s.respondError(w, domain.StoreFailure(err))
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(movies))
}

func (s *Server) handleGetRatedMovie(w http.ResponseWriter, r *http.Request) {
	ttID := chi.URLParam(r, "tt_id")
	movie, err := s.deps.Movies.GetRated(r.Context(), ttID)
	if err != nil {
		s.respondError(w, lookupError(err, msgNotYetRated))
		return
	}
	s.respondJSON(w, http.StatusOK, movie)
}

// handleListOwnRatings lists the caller's rated movies, each carrying only
// the caller's rating.
func (s *Server) handleListOwnRatings(w http.ResponseWriter, r *http.Request) {
	claim, ok := s.claim(w, r)
	if !ok {
		return
	}
	movies, err := s.deps.Movies.ListRatedBy(r.Context(), claim.Username, pageFrom(r))
	if err != nil {
		s.respondError(w, domain.StoreFailure(err))
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(movies))
}

func (s *Server) handleGetOwnRating(w http.ResponseWriter, r *http.Request) {
	claim, ok := s.claim(w, r)
	if !ok {
		return
	}
	ttID := chi.URLParam(r, "tt_id")
	movie, err := s.deps.Movies.GetRatedBy(r.Context(), ttID, claim.Username)
	if err != nil {
		s.respondError(w, lookupError(err, msgNotYetRated))
		return
	}
	s.respondJSON(w, http.StatusOK, movie)
}

// claim returns the identity the gate attached, answering 401 when there is
// none.
func (s *Server) claim(w http.ResponseWriter, r *http.Request) (domain.AuthClaim, bool) {
	claim, ok := auth.ClaimFromContext(r.Context())
	if !ok || claim.Username == "" {
		s.respondError(w, domain.Unauthorized("no token provided", nil))
		return domain.AuthClaim{}, false
	}
	return claim, true
}
