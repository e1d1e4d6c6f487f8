package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Clark-Hu/notflix/internal/domain"
)

const (
	msgInvalidCredentials = "Invalid credentials."
	msgUserNotFound       = "User not found."
)

type registerRequest struct {
	LastName  string `json:"last_name"`
	Infix     string `json:"infix"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// titleName lowercases name and capitalises the first letter after each run
// of whitespace. Hyphens and apostrophes do not start a word: "jean-luc"
// becomes "Jean-luc".
func titleName(name string) string {
	lower := cases.Lower(language.Und).String(strings.TrimSpace(name))
	upper := cases.Upper(language.Und)

	var b strings.Builder
	b.Grow(len(lower))
	wordStart := true
	for _, r := range lower {
		if wordStart && !unicode.IsSpace(r) {
			b.WriteString(upper.String(string(r)))
		} else {
			b.WriteRune(r)
		}
		wordStart = unicode.IsSpace(r)
	}
	return b.String()
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondError(w, domain.InvalidInput(msgInvalidBody))
		return
	}
	if strings.TrimSpace(req.LastName) == "" || strings.TrimSpace(req.FirstName) == "" ||
		req.Username == "" || req.Password == "" {
		s.logger.Printf("register rejected: missing required field")
		s.respondError(w, domain.InvalidInput(msgInvalidBody))
		return
	}

	salt, err := s.deps.Hasher.NewSalt()
	if err != nil {
		s.respondError(w, domain.StoreFailure(err))
		return
	}
	user := domain.User{
		Username:     req.Username,
		FirstName:    titleName(req.FirstName),
		Infix:        strings.ToLower(strings.TrimSpace(req.Infix)),
		LastName:     titleName(req.LastName),
		PasswordHash: s.deps.Hasher.Hash(req.Password, salt),
		PasswordSalt: salt,
	}

	if err := s.deps.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Printf("register rejected: username %s occupied", user.Username)
		}
		s.respondError(w, domain.StoreFailure(err))
		return
	}

	s.logger.Printf("user %s was created", user.Username)
	s.respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.Users.List(r.Context(), pageFrom(r))
	if err != nil {
		s.respondError(w, domain.StoreFailure(err))
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(users))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.Users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.respondError(w, lookupError(err, msgUserNotFound))
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}

// handleLogin exchanges a username and password for a signed token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil || req.Username == "" || req.Password == "" {
		s.respondError(w, domain.InvalidInput(msgInvalidCredentials))
		return
	}

	user, err := s.deps.Users.Get(r.Context(), req.Username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Printf("login rejected: user %s not found", req.Username)
		s.respondError(w, domain.Unauthorized(msgInvalidCredentials, nil))
		return
	case err != nil:
		s.respondError(w, domain.StoreFailure(err))
		return
	}

	if !s.deps.Hasher.Verify(req.Password, user.PasswordSalt, user.PasswordHash) {
		s.logger.Printf("login rejected: wrong password for %s", req.Username)
		s.respondError(w, domain.Unauthorized(msgInvalidCredentials, nil))
		return
	}

	token, err := s.deps.Tokens.Issue(user.Claim())
	if err != nil {
		s.respondError(w, domain.StoreFailure(err))
		return
	}
	s.logger.Printf("user %s authenticated", user.Username)
	s.respondJSON(w, http.StatusCreated, tokenResponse{Token: token})
}
