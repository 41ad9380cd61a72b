package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/gymsplit/internal/metrics"
	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

// Store is the persistence the HTTP layer needs beyond the engine: account
// and catalog CRUD plus a health probe. Both storage backends satisfy it.
type Store interface {
	workout.Store
	Ping(ctx context.Context) error
	RegisterUser(ctx context.Context, u models.NewUser) (*models.User, error)
	GetUser(ctx context.Context, userID int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListDefaultExercises(ctx context.Context) ([]models.DefaultExercise, error)
	ListExercises(ctx context.Context, userID int) ([]models.Exercise, error)
	CreateExercise(ctx context.Context, userID int, in models.ExerciseInput) (*models.Exercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID int, in models.ExerciseInput) (*models.Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID int) error
}

// Options configures a Server. Metrics and Gatherer are optional.
type Options struct {
	APIKey      string
	BcryptCost  int
	Metrics     *metrics.Manager
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	engine   *workout.Engine
	opts     Options
	log      *slog.Logger
	validate *validator.Validate
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, engine *workout.Engine, opts Options, log *slog.Logger) *Server {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	s := &Server{
		store:    store,
		engine:   engine,
		opts:     opts,
		log:      log,
		validate: validator.New(),
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(PanicRecovery(s.log, s.opts.Metrics))
	if s.opts.Metrics != nil {
		s.router.Use(RequestMetrics(s.opts.Metrics))
	}
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	if s.opts.Gatherer != nil {
		s.router.Handle(s.opts.MetricsPath, promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.opts.APIKey))

		r.Post("/users", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Get("/default-exercises", s.handleDefaultExercises)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/exercises", s.handleListExercises)
			r.Post("/exercises", s.handleCreateExercise)
			r.Put("/exercises/{exerciseID}", s.handleUpdateExercise)
			r.Delete("/exercises/{exerciseID}", s.handleDeleteExercise)

			r.Get("/routine", s.handleGetRoutine)
			r.Put("/routine", s.handleSaveRoutine)
			r.Delete("/routine", s.handleDeleteRoutine)

			r.Route("/workout", func(r chi.Router) {
				r.Get("/state", s.handleState)
				r.Post("/generate", s.handleGenerate)
				r.Get("/selections", s.handleListSelections)
				r.Delete("/selections", s.handleClearSelections)
				r.Post("/selections/{exerciseID}/toggle", s.handleToggleSelection)
				r.Put("/selections/{exerciseID}", s.handleSetSelection)
				r.Post("/complete", s.handleComplete)
				r.Get("/sessions", s.handleListSessions)
				r.Post("/sessions/logs", s.handleSessionLogs)
				r.Get("/logs", s.handleRecentLogs)
			})
		})
	})
}
