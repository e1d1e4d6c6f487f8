package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/Clark-Hu/notflix/internal/domain"
	"github.com/Clark-Hu/notflix/internal/metrics"
)

// TokenHeader carries the signed token on authenticated requests.
const TokenHeader = "AuthToken"

// Rule lets a (path, method) pair through without a token. With BaseCheck the
// request path is compared after its last segment is stripped, so a rule for
// /api/movies also admits /api/movies/{tt_id}.
type Rule struct {
	Method    string
	Path      string
	BaseCheck bool
}

// DefaultRules lists the public endpoints under apiPath.
func DefaultRules(apiPath string) []Rule {
	return []Rule{
		{Method: http.MethodGet, Path: apiPath},
		{Method: http.MethodPost, Path: apiPath + "/users"},
		{Method: http.MethodPost, Path: apiPath + "/login"},
		{Method: http.MethodGet, Path: apiPath + "/movies"},
		{Method: http.MethodGet, Path: apiPath + "/movies", BaseCheck: true},
	}
}

// DefaultProtectedSuffixes are trailing segments that never count as a
// stripped base: /api/movies/ratings shares its base with /api/movies/{tt_id}
// but always requires a token.
var DefaultProtectedSuffixes = []string{"/ratings"}

// Bypass reports whether a request may skip authentication.
func Bypass(rules []Rule, protectedSuffixes []string, method, rawPath string) bool {
	path := rawPath
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, rule := range rules {
		candidate := path
		if rule.BaseCheck {
			candidate = basePath(path, protectedSuffixes)
		}
		if rule.Path == candidate && rule.Method == method {
			return true
		}
	}
	return false
}

// basePath drops the trailing "/segment" unless it is protected.
func basePath(path string, protectedSuffixes []string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return path
	}
	suffix := path[i:]
	for _, protected := range protectedSuffixes {
		if suffix == protected {
			return path
		}
	}
	return path[:i]
}

// Verifier resolves a token to the identity it carries.
type Verifier interface {
	Verify(token string) (domain.AuthClaim, error)
}

// GateOptions tunes a Gate. Zero values fall back to the defaults.
type GateOptions struct {
	APIPath           string
	Rules             []Rule
	ProtectedSuffixes []string
	Logger            *log.Logger
	Metrics           *metrics.Recorder
}

// Gate authenticates every request under the API path exactly once, before
// any handler runs.
type Gate struct {
	verifier  Verifier
	rules     []Rule
	protected []string
	logger    *log.Logger
	metrics   *metrics.Recorder
}

func NewGate(verifier Verifier, opts GateOptions) *Gate {
	if opts.Rules == nil {
		opts.Rules = DefaultRules(opts.APIPath)
	}
	if opts.ProtectedSuffixes == nil {
		opts.ProtectedSuffixes = DefaultProtectedSuffixes
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Gate{
		verifier:  verifier,
		rules:     opts.Rules,
		protected: opts.ProtectedSuffixes,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// Middleware wraps next with CORS headers, preflight handling and token
// verification.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "PUT, DELETE")

		if r.Method == http.MethodOptions {
			g.metrics.GateDecision(metrics.DecisionPreflight)
			w.Header().Set("Access-Control-Allow-Headers", TokenHeader)
			w.WriteHeader(http.StatusOK)
			return
		}

		// Match on the escaped path, which is what the router routes on.
		if Bypass(g.rules, g.protected, r.Method, r.URL.EscapedPath()) {
			g.metrics.GateDecision(metrics.DecisionBypass)
			next.ServeHTTP(w, r)
			return
		}

		claim, err := g.verifier.Verify(r.Header.Get(TokenHeader))
		if err != nil {
			g.metrics.GateDecision(metrics.DecisionRejected)
			g.logger.Printf("auth: rejected %s %s: %v", r.Method, r.URL.Path, err)
			writeUnauthorized(w, domain.Unauthorized(err.Error(), err))
			return
		}

		g.metrics.GateDecision(metrics.DecisionAuthenticated)
		next.ServeHTTP(w, r.WithContext(WithClaim(r.Context(), claim)))
	})
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": domain.Message(err)})
}
