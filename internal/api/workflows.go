package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hyeon/floe/internal/repository"
	"github.com/hyeon/floe/internal/workflow"
)

type createWorkflowRequest struct {
	Name        string                `json:"name" validate:"required,min=1,max=200"`
	Description string                `json:"description" validate:"max=2000"`
	Modules     []workflow.Module     `json:"modules"`
	Connections []workflow.Connection `json:"connections"`
	IsTemplate  bool                  `json:"is_template"`
	CreatedBy   string                `json:"created_by"`
}

// updateWorkflowRequest uses pointers so PUT only touches the fields the
// client actually sent.
type updateWorkflowRequest struct {
	Name        *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description" validate:"omitempty,max=2000"`
	Modules     *[]workflow.Module     `json:"modules"`
	Connections *[]workflow.Connection `json:"connections"`
	IsTemplate  *bool                  `json:"is_template"`
}

type cloneWorkflowRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

func (s *Server) createWorkflow(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := s.decodeValid(r, &req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	wf := &workflow.Workflow{
		ID:          workflow.NewID(),
		Name:        req.Name,
		Description: req.Description,
		Modules:     req.Modules,
		Connections: req.Connections,
		IsTemplate:  req.IsTemplate,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if wf.Modules == nil {
		wf.Modules = []workflow.Module{}
	}
	if wf.Connections == nil {
		wf.Connections = []workflow.Connection{}
	}

	if err := s.repo.Create(r.Context(), wf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := s.repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if workflows == nil {
		workflows = []*workflow.Workflow{}
	}
	writeJSON(w, http.StatusOK, workflows)
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) updateWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req updateWorkflowRequest
	if err := s.decodeValid(r, &req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		wf.Name = *req.Name
	}
	if req.Description != nil {
		wf.Description = *req.Description
	}
	if req.Modules != nil {
		wf.Modules = *req.Modules
	}
	if req.Connections != nil {
		wf.Connections = *req.Connections
	}
	if req.IsTemplate != nil {
		wf.IsTemplate = *req.IsTemplate
	}
	wf.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(r.Context(), wf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "workflow not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Workflow deleted successfully"})
}

func (s *Server) cloneWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req cloneWorkflowRequest
	if err := s.decodeValid(r, &req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	clone := wf.Clone(req.Name)
	if err := s.repo.Create(r.Context(), clone); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, clone)
}

// lookup fetches the workflow named in the route, writing a 404 on miss.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, bool) {
	id := chi.URLParam(r, "id")
	wf, err := s.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "workflow not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return wf, true
}
