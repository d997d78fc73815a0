package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/hyeon/floe/internal/workflow"
)

type executeWorkflowRequest struct {
	Inputs map[string]map[string]any `json:"inputs"`
}

// executeWorkflow runs the stored workflow and returns the full execution
// result. The run outcome travels in the result's status field; the HTTP
// status stays 200 as long as the engine produced a result at all.
func (s *Server) executeWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req executeWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	res := s.executor.Execute(r.Context(), wf, req.Inputs)
	if res.Status == workflow.RunError {
		s.logger.Warn("workflow execution failed", "workflow_id", wf.ID, "err", res.Error)
	}
	writeJSON(w, http.StatusOK, res)
}
