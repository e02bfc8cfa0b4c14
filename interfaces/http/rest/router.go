// Package rest wires the HTTP surface of the planning hierarchy.
package rest

import (
	"net/http"

	"okr-backend/infrastructure/persistence/repository"
	"okr-backend/interfaces/http/rest/handlers"
	"okr-backend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	themes     *repository.ThemeRepository
	objectives *repository.ObjectiveRepository
	keyResults *repository.KeyResultRepository
	goals      *repository.GoalRepository
	finder     *repository.Finder
	enableCORS bool
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	themes *repository.ThemeRepository,
	objectives *repository.ObjectiveRepository,
	keyResults *repository.KeyResultRepository,
	goals *repository.GoalRepository,
	finder *repository.Finder,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		themes:     themes,
		objectives: objectives,
		keyResults: keyResults,
		goals:      goals,
		finder:     finder,
		enableCORS: enableCORS,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)

	router.Route("/strategic-themes", func(r chi.Router) {
		themeHandler := handlers.NewThemeHandler(rt.themes, rt.logger)
		r.Get("/", themeHandler.ListThemes)
		r.Post("/", themeHandler.CreateTheme)
		r.Get("/{themeID}", themeHandler.GetTheme)
		r.Put("/{themeID}", themeHandler.UpdateTheme)
		r.Delete("/{themeID}", themeHandler.DeleteTheme)
	})

	router.Route("/objectives", func(r chi.Router) {
		objectiveHandler := handlers.NewObjectiveHandler(rt.objectives, rt.finder, rt.logger)
		r.Get("/", objectiveHandler.ListObjectives)
		r.Post("/", objectiveHandler.CreateObjective)
		r.Get("/{objectiveID}", objectiveHandler.GetObjective)
		r.Put("/{objectiveID}", objectiveHandler.UpdateObjective)
		r.Delete("/{objectiveID}", objectiveHandler.DeleteObjective)
	})

	router.Route("/key-results", func(r chi.Router) {
		keyResultHandler := handlers.NewKeyResultHandler(rt.keyResults, rt.finder, rt.logger)
		r.Get("/", keyResultHandler.ListKeyResults)
		r.Post("/", keyResultHandler.CreateKeyResult)
		r.Get("/{keyResultID}", keyResultHandler.GetKeyResult)
		r.Put("/{keyResultID}", keyResultHandler.UpdateKeyResult)
		r.Delete("/{keyResultID}", keyResultHandler.DeleteKeyResult)
	})

	router.Route("/goals", func(r chi.Router) {
		goalHandler := handlers.NewGoalHandler(rt.goals, rt.finder, rt.logger)
		r.Get("/", goalHandler.ListGoals)
		r.Post("/", goalHandler.CreateGoal)
		r.Get("/{goalID}", goalHandler.GetGoal)
		r.Put("/{goalID}", goalHandler.UpdateGoal)
		r.Delete("/{goalID}", goalHandler.DeleteGoal)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
