package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Clark-Hu/notflix/internal/domain"
)

const maxRequestBody = 1 << 20 // 1 MiB

const msgInvalidBody = "Invalid body content."

type errorResponse struct {
	Error string `json:"error"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

// respondError writes err as {"error": msg} with the status of its kind.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Printf("internal error: %v", err)
	}
	s.respondJSON(w, status, errorResponse{Error: domain.Message(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrStore):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// lookupError attaches msg to a bare not-found result.
func lookupError(err error, msg string) error {
	var de *domain.Error
	if errors.Is(err, domain.ErrNotFound) && !errors.As(err, &de) {
		return domain.NotFound(msg)
	}
	return domain.StoreFailure(err)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func pageFrom(r *http.Request) domain.Page {
	q := r.URL.Query()
	return domain.ParsePage(q.Get("limit"), q.Get("page"))
}
