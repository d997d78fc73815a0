// Package workflow defines the domain model for the workflow builder:
// modules, connections, workflows, and execution results.
package workflow

import (
	"time"
)

// Module is one node in a workflow graph. Its Type references an entry in
// the module-type catalog; Config is validated against that entry's config
// schema at execution time. Position is a layout hint for the canvas and
// has no effect on execution.
type Module struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Config   map[string]any `json:"config"`
	Position map[string]int `json:"position,omitempty"`
}

// Connection is a directed edge carrying one output handle's value to one
// input handle. Handles are optional; resolution of empty handles is the
// graph layer's concern.
type Connection struct {
	ID           string `json:"id,omitempty"`
	Source       string `json:"source"`
	SourceHandle string `json:"source_handle,omitempty"`
	Target       string `json:"target"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// Workflow is a named, persisted graph of modules and connections.
//
// A workflow may be stored with a cycle; acyclicity is checked at execution
// time, not at storage time.
type Workflow struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	Modules        []Module     `json:"modules"`
	Connections    []Connection `json:"connections"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	CreatedBy      string       `json:"created_by,omitempty"`
	IsTemplate     bool         `json:"is_template"`
	ParentWorkflow string       `json:"parent_workflow,omitempty"`
}

// Module returns the module with the given id, or nil.
func (w *Workflow) Module(id string) *Module {
	for i := range w.Modules {
		if w.Modules[i].ID == id {
			return &w.Modules[i]
		}
	}
	return nil
}

// Copy returns a deep copy of w under the same identity. Mutating the copy,
// its module configs, or its connection set never affects the original, so
// storage layers can hand copies to concurrent readers and writers.
func (w *Workflow) Copy() *Workflow {
	out := *w
	out.Modules = make([]Module, len(w.Modules))
	for i, m := range w.Modules {
		out.Modules[i] = m
		out.Modules[i].Config = copyMap(m.Config)
		if m.Position != nil {
			pos := make(map[string]int, len(m.Position))
			for k, v := range m.Position {
				pos[k] = v
			}
			out.Modules[i].Position = pos
		}
	}
	out.Connections = make([]Connection, len(w.Connections))
	copy(out.Connections, w.Connections)
	return &out
}

// Clone returns a copy of w under a new identity: fresh id and timestamps,
// the caller's name, and ParentWorkflow recording the lineage. Template and
// ownership flags do not carry over.
func (w *Workflow) Clone(name string) *Workflow {
	now := time.Now().UTC()
	clone := w.Copy()
	clone.ID = NewID()
	clone.Name = name
	clone.CreatedAt = now
	clone.UpdatedAt = now
	clone.CreatedBy = ""
	clone.IsTemplate = false
	clone.ParentWorkflow = w.ID
	return clone
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ModuleStatus is the per-module outcome recorded during a run.
type ModuleStatus string

const (
	StatusCompleted ModuleStatus = "completed"
	StatusSkipped   ModuleStatus = "skipped"
	StatusFailed    ModuleStatus = "failed"
)

// RunStatus is the overall outcome of one execution run.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// SummaryKey is the reserved key in ExecutionResult.Data holding the run
// summary. Module ids are UUIDs, so it cannot collide with module output.
const SummaryKey = "summary"

// Summary aggregates a run's outcome alongside the per-module outputs.
type Summary struct {
	WorkflowID string                  `json:"workflow_id"`
	Modules    int                     `json:"modules"`
	Completed  int                     `json:"completed"`
	Skipped    []string                `json:"skipped,omitempty"`
	Statuses   map[string]ModuleStatus `json:"statuses"`
	DurationMS int64                   `json:"duration_ms"`
}

// ExecutionResult is the immutable outcome of one execution run. Data maps
// module id to that module's output values; the SummaryKey entry holds the
// run Summary. On error, Data preserves outputs of modules that completed
// before the failure.
type ExecutionResult struct {
	Status RunStatus      `json:"status"`
	Data   map[string]any `json:"data"`
	Error  string         `json:"error,omitempty"`
}

// Outputs returns the recorded output map for a module id, or nil.
func (r *ExecutionResult) Outputs(moduleID string) map[string]any {
	if out, ok := r.Data[moduleID].(map[string]any); ok {
		return out
	}
	return nil
}
