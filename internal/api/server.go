// Package api exposes the workflow builder's HTTP surface: the module-type
// catalog, workflow CRUD with cloning, and workflow execution.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/repository"
	"github.com/hyeon/floe/internal/workflow"
)

// Executor runs a workflow and always produces a result. *engine.Engine
// satisfies this interface.
type Executor interface {
	Execute(ctx context.Context, wf *workflow.Workflow, initial map[string]map[string]any) *workflow.ExecutionResult
}

type Server struct {
	repo     repository.WorkflowRepository
	catalog  *catalog.Catalog
	executor Executor
	validate *validator.Validate
	logger   *slog.Logger
}

func NewServer(repo repository.WorkflowRepository, cat *catalog.Catalog, exec Executor) *Server {
	return &Server{
		repo:     repo,
		catalog:  cat,
		executor: exec,
		validate: validator.New(),
		logger:   slog.Default(),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Route("/api", func(r chi.Router) {
		r.Get("/module-types", s.listModuleTypes)
		r.Route("/workflows", func(r chi.Router) {
			r.Post("/", s.createWorkflow)
			r.Get("/", s.listWorkflows)
			r.Get("/{id}", s.getWorkflow)
			r.Put("/{id}", s.updateWorkflow)
			r.Delete("/{id}", s.deleteWorkflow)
			r.Post("/{id}/clone", s.cloneWorkflow)
			r.Post("/{id}/execute", s.executeWorkflow)
		})
	})
	return r
}

func (s *Server) listModuleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.List())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeValid decodes the request body into v and runs struct validation.
func (s *Server) decodeValid(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return s.validate.Struct(v)
}
