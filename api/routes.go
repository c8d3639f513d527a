package api

import (
	"fmt"

	goversion "github.com/caarlos0/go-version"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/garnizeh/mentorship/internal/config"
	"github.com/garnizeh/mentorship/internal/db"
	"github.com/garnizeh/mentorship/internal/mentorship"
	"github.com/garnizeh/mentorship/internal/metrics"
	"github.com/garnizeh/mentorship/internal/repository/sqlite"
	"github.com/garnizeh/mentorship/pkg/repository"
)

// Store is every storage contract the services need.
type Store interface {
	repository.UserRepo
	repository.MentorRepo
	repository.RequestRepo
	repository.LearningRepo
	repository.EngagementRepo
}

// Services bundles the core services the handlers call.
type Services struct {
	Accounts    *mentorship.Accounts
	Requests    *mentorship.Requests
	Directory   *mentorship.Directory
	Coordinator *mentorship.Coordinator
	Learnings   *mentorship.Learnings
}

// NewServices wires the core over one store.
func NewServices(store Store, opts mentorship.Options) Services {
	return Services{
		Accounts:    mentorship.NewAccounts(store, opts),
		Requests:    mentorship.NewRequests(store, opts),
		Directory:   mentorship.NewDirectory(store, opts),
		Coordinator: mentorship.NewCoordinator(store, store, store, opts),
		Learnings:   mentorship.NewLearnings(store, store, opts),
	}
}

// SetupRoutes wires the sqlite store, the core and the metrics registry.
func SetupRoutes(cfg *config.Config, version goversion.Info, conn *db.DB) (*mux.Router, error) {
	repo := sqlite.New(conn, logger)

	m := metrics.New()
	if err := m.Register(
		metrics.NewEngagementCollector(repo, repo),
		collectors.NewDBStatsCollector(conn.GetConn(), "mentorship"),
	); err != nil {
		return nil, fmt.Errorf("register collectors: %w", err)
	}

	svc := NewServices(repo, mentorship.Options{
		MaxWorkload: cfg.Mentorship.MaxWorkload,
		Retries:     cfg.Mentorship.AssignRetries,
		Logger:      logger,
		Recorder:    m,
	})
	return NewRouter(cfg, version, svc, m), nil
}

// NewRouter mounts every endpoint over svc. m also receives the core's
// lifecycle events when it is the Recorder in the services' options.
func NewRouter(cfg *config.Config, version goversion.Info, svc Services, m *metrics.Metrics) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware(m))
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	systemHandler := &SystemHandler{Version: version}
	authHandler := NewAuthHandler(svc.Accounts, cfg.JWTSecret, cfg.TokenDuration)
	requestsHandler := NewRequestsHandler(svc.Requests, svc.Coordinator)
	mentorsHandler := NewMentorsHandler(svc.Directory)
	learningsHandler := NewLearningsHandler(svc.Learnings)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := r.NewRoute().Subrouter()
	protected.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	// Requests; /requests/my is registered before /requests/{id}.
	protected.HandleFunc("/requests", requestsHandler.Create).Methods("POST")
	protected.HandleFunc("/requests", requestsHandler.ListAll).Methods("GET")
	protected.HandleFunc("/requests/my", requestsHandler.ListMine).Methods("GET")
	protected.HandleFunc("/requests/{id}", requestsHandler.Get).Methods("GET")
	protected.HandleFunc("/requests/{id}/assign", requestsHandler.Assign).Methods("POST")
	protected.HandleFunc("/requests/{id}/reject", requestsHandler.Reject).Methods("POST")

	// Mentors
	protected.HandleFunc("/mentors", mentorsHandler.List).Methods("GET")
	protected.HandleFunc("/mentors", mentorsHandler.Onboard).Methods("POST")
	protected.HandleFunc("/mentors/{id}", mentorsHandler.Get).Methods("GET")

	// Learnings
	protected.HandleFunc("/learnings", learningsHandler.ListMine).Methods("GET")
	protected.HandleFunc("/learnings/{id}", learningsHandler.Get).Methods("GET")
	protected.HandleFunc("/learnings/{id}/progress", learningsHandler.Progress).Methods("GET")
	protected.HandleFunc("/learnings/{id}/plan", learningsHandler.ReplacePlan).Methods("PUT")
	protected.HandleFunc("/learnings/{id}/plan", learningsHandler.AddPlanItem).Methods("POST")
	protected.HandleFunc("/learnings/{id}/plan/{itemId}", learningsHandler.EditPlanItem).Methods("PUT")
	protected.HandleFunc("/learnings/{id}/plan/{itemId}", learningsHandler.RemovePlanItem).Methods("DELETE")
	protected.HandleFunc("/learnings/{id}/plan/{itemId}/toggle", learningsHandler.TogglePlanItem).Methods("PATCH")
	protected.HandleFunc("/learnings/{id}/notes", learningsHandler.UpdateNotes).Methods("PUT")
	protected.HandleFunc("/learnings/{id}/complete", learningsHandler.Complete).Methods("POST")

	// Admin
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAdmin)
	admin.HandleFunc("/learnings", learningsHandler.ListAll).Methods("GET")

	return r
}
