package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/notflix/internal/auth"
	"github.com/Clark-Hu/notflix/internal/config"
	"github.com/Clark-Hu/notflix/internal/domain"
	"github.com/Clark-Hu/notflix/internal/metrics"
)

// MovieReader serves the read-only movie views.
type MovieReader interface {
	List(ctx context.Context, page domain.Page) ([]domain.Movie, error)
	Get(ctx context.Context, ttID string) (domain.Movie, error)
	ListRated(ctx context.Context, page domain.Page) ([]domain.Movie, error)
	GetRated(ctx context.Context, ttID string) (domain.Movie, error)
	ListRatedBy(ctx context.Context, username string, page domain.Page) ([]domain.Movie, error)
	GetRatedBy(ctx context.Context, ttID, username string) (domain.Movie, error)
}

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user domain.User) error
	Get(ctx context.Context, username string) (domain.User, error)
	List(ctx context.Context, page domain.Page) ([]domain.User, error)
}

// RatingEngine mutates ratings and keeps averages consistent.
type RatingEngine interface {
	Add(ctx context.Context, ttID, username string, points int) (domain.Rating, error)
	Update(ctx context.Context, ttID, username string, points int) (domain.Rating, error)
	Delete(ctx context.Context, ttID, username string) error
}

// TokenIssuer signs login tokens.
type TokenIssuer interface {
	Issue(claim domain.AuthClaim) (string, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Movies  MovieReader
	Users   UserStore
	Ratings RatingEngine
	Tokens  TokenIssuer
	Hasher  auth.Hasher
	Gate    *auth.Gate
	Health  HealthChecker
	Metrics *metrics.Recorder
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	deps    Deps
	logger  *log.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, deps Deps, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		router: r,
	}
	s.registerRoutes()
	s.httpSrv = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSecs) * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())

	s.router.Route(s.cfg.APIPath, func(r chi.Router) {
		r.Use(s.deps.Gate.Middleware)
		r.Get("/", s.handleDocs)
		r.Post("/login", s.handleLogin)
		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleRegister)
			r.Get("/{username}", s.handleGetUser)
		})
		r.Route("/movies", func(r chi.Router) {
			r.Get("/", s.handleListMovies)
			r.Get("/ratings", s.handleListOwnRatings)
			r.Get("/ratings/all", s.handleListRatedMovies)
			r.Route("/{tt_id}", func(r chi.Router) {
				r.Get("/", s.handleGetMovie)
				r.Get("/ratings/all", s.handleGetRatedMovie)
				r.Get("/ratings", s.handleGetOwnRating)
				r.Post("/ratings", s.handleAddRating)
				r.Put("/ratings", s.handleUpdateRating)
				r.Delete("/ratings", s.handleDeleteRating)
			})
		})
	})
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server. A server stopped before Start
// never listens.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.deps.Health != nil {
		if err := s.deps.Health.HealthCheck(ctx); err != nil {
			s.logger.Printf("health check failed: %v", err)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleDocs serves the API documentation PDF.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.cfg.DocsPath)
	if err != nil {
		s.logger.Printf("read docs %s: %v", s.cfg.DocsPath, err)
		s.respondError(w, domain.StoreFailure(errors.New("documentation unavailable")))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
