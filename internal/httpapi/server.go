package httpapi

import (
	"net/http"
	"time"

	"github.com/andy/billing/internal/clock"
	"github.com/andy/billing/internal/config"
	"github.com/andy/billing/internal/log"
	"github.com/andy/billing/internal/repository"
	"github.com/andy/billing/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 60 * time.Second

// Deps are the collaborators the handlers need.
type Deps struct {
	Logger  *log.Logger
	Clients repository.ClientRepository
	Tasks   repository.TaskRepository
	Reports service.ReportService
	Exports service.ExportService
	Clock   clock.Clock
}

type Server struct {
	router  chi.Router
	logger  *log.Logger
	clients repository.ClientRepository
	tasks   repository.TaskRepository
	reports service.ReportService
	exports service.ExportService
	clock   clock.Clock
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	if deps.Clock == nil {
		deps.Clock = clock.System
	}

	s := &Server{
		router:  chi.NewRouter(),
		logger:  deps.Logger,
		clients: deps.Clients,
		tasks:   deps.Tasks,
		reports: deps.Reports,
		exports: deps.Exports,
		clock:   deps.Clock,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the router in an http.Server configured from cfg.
func (s *Server) HTTPServer(cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:    cfg.Addr,
		Handler: s.router,

		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(log.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", s.handleClientReport)
			r.Get("/monthly", s.handleMonthly)
			r.Get("/export/{format}", s.handleExportSummary)
			r.Get("/clients/{id}", s.handleClientDetail)
			r.Get("/clients/{id}/export/{format}", s.handleExportClient)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.handleListClients)
			r.Post("/", s.handleCreateClient)
			r.Get("/{id}", s.handleGetClient)
			r.Put("/{id}", s.handleUpdateClient)
			r.Delete("/{id}", s.handleDeleteClient)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleCreateTask)
			r.Get("/{id}", s.handleGetTask)
			r.Put("/{id}", s.handleUpdateTask)
			r.Delete("/{id}", s.handleDeleteTask)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
