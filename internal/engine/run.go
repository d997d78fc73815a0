package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/graph"
	"github.com/hyeon/floe/internal/workflow"
)

// runState is the per-run lifecycle. Terminal states are never left.
type runState string

const (
	statePending   runState = "pending"
	stateRunning   runState = "running"
	stateSucceeded runState = "succeeded"
	stateFailed    runState = "failed"
)

// run owns the mutable state of one execution: the write-once outputs map,
// per-module statuses, and the first recorded failure. All access goes
// through the mutex; the run is discarded when Execute returns.
type run struct {
	wf      *workflow.Workflow
	graph   *graph.Graph
	initial map[string]map[string]any

	mu       sync.Mutex
	state    runState
	outputs  map[string]map[string]any
	statuses map[string]workflow.ModuleStatus
}

func newRun(wf *workflow.Workflow, g *graph.Graph, initial map[string]map[string]any) *run {
	return &run{
		wf:       wf,
		graph:    g,
		initial:  initial,
		state:    statePending,
		outputs:  make(map[string]map[string]any, g.Len()),
		statuses: make(map[string]workflow.ModuleStatus, g.Len()),
	}
}

func (r *run) setState(s runState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == stateSucceeded || r.state == stateFailed {
		return
	}
	r.state = s
}

// allInputsDead reports whether every incoming connection of a module is
// dead: sourced from a skipped module, or from a completed module that did
// not emit the referenced handle (an unchosen conditional branch). Modules
// with no incoming connections are always live.
func (r *run) allInputsDead(moduleID string) bool {
	connected := r.graph.InputsFor(moduleID)
	if len(connected) == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, src := range connected {
		switch r.statuses[src.ModuleID] {
		case workflow.StatusSkipped:
			// dead
		case workflow.StatusCompleted:
			if _, emitted := r.outputs[src.ModuleID][src.Handle]; emitted {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (r *run) resolve(mod *workflow.Module, mt catalog.ModuleType) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return resolveInputs(mod, mt, r.graph, r.outputs, r.initial)
}

func (r *run) markSkipped(moduleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[moduleID] = workflow.StatusSkipped
}

func (r *run) complete(moduleID string, outputs map[string]any) {
	if outputs == nil {
		outputs = map[string]any{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[moduleID] = outputs
	r.statuses[moduleID] = workflow.StatusCompleted
}

// fail records a module failure and returns the error that aborts the run.
func (r *run) fail(moduleID string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[moduleID] = workflow.StatusFailed
	return fmt.Errorf("module %q: %w", moduleID, err)
}

func (r *run) successResult(started time.Time) *workflow.ExecutionResult {
	r.setState(stateSucceeded)
	return &workflow.ExecutionResult{
		Status: workflow.RunSuccess,
		Data:   r.buildData(started),
	}
}

// partialData returns the outputs of modules that completed before the run
// aborted, plus the summary.
func (r *run) partialData(started time.Time) map[string]any {
	return r.buildData(started)
}

func (r *run) buildData(started time.Time) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make(map[string]any, len(r.outputs)+1)
	for id, outs := range r.outputs {
		data[id] = outs
	}

	summary := workflow.Summary{
		WorkflowID: r.wf.ID,
		Modules:    r.graph.Len(),
		Statuses:   make(map[string]workflow.ModuleStatus, len(r.statuses)),
		DurationMS: time.Since(started).Milliseconds(),
	}
	for id, st := range r.statuses {
		summary.Statuses[id] = st
		switch st {
		case workflow.StatusCompleted:
			summary.Completed++
		case workflow.StatusSkipped:
			summary.Skipped = append(summary.Skipped, id)
		}
	}
	sort.Strings(summary.Skipped)
	data[workflow.SummaryKey] = summary
	return data
}
