// Package engine executes workflow graphs: it orders modules by their data
// dependencies, resolves each module's inputs from upstream outputs,
// dispatches to the handler registry, and aggregates per-module results
// into one ExecutionResult. Every failure resolves to a result; the engine
// never faults the hosting process.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/graph"
	"github.com/hyeon/floe/internal/modules"
	"github.com/hyeon/floe/internal/workflow"
)

const defaultRunTimeout = 5 * time.Minute

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-run deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine runs workflows against a module-type catalog and handler registry.
// Safe for concurrent use; each run owns its state exclusively.
type Engine struct {
	catalog  *catalog.Catalog
	registry *modules.Registry
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates an Engine.
func New(cat *catalog.Catalog, reg *modules.Registry, opts ...Option) *Engine {
	e := &Engine{
		catalog:  cat,
		registry: reg,
		timeout:  defaultRunTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs wf once. initial supplies externally provided inputs keyed
// by module id and input name. Structural problems (malformed connections,
// cycles) fail before any module executes; a module failure aborts the rest
// of the run but preserves outputs of modules that already completed.
func (e *Engine) Execute(ctx context.Context, wf *workflow.Workflow, initial map[string]map[string]any) *workflow.ExecutionResult {
	started := time.Now()

	g, err := graph.Build(wf, e.catalog)
	if err != nil {
		return errorResult(nil, started, err)
	}
	order, err := g.Order()
	if err != nil {
		return errorResult(nil, started, err)
	}

	r := newRun(wf, g, initial)
	r.setState(stateRunning)
	e.logger.Info("workflow run started", "workflow_id", wf.ID, "modules", len(order))

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	execCtx, abort := context.WithCancel(runCtx)
	defer abort()

	done := make(map[string]chan struct{}, len(order))
	for _, id := range order {
		done[id] = make(chan struct{})
	}

	var (
		eg       errgroup.Group
		failOnce sync.Once
		firstErr error
	)

	// One goroutine per module, gated on its predecessors' done channels.
	// Launch order follows the topological order, so a run with no
	// independent modules degrades to strictly sequential execution.
	// A failing module aborts execCtx before its done channel closes, so
	// waiters always observe the cancellation and the root failure is the
	// one reported.
	for _, moduleID := range order {
		eg.Go(func() error {
			defer close(done[moduleID])

			for _, parentID := range g.Predecessors(moduleID) {
				select {
				case <-done[parentID]:
				case <-execCtx.Done():
					return nil
				}
			}
			if execCtx.Err() != nil {
				return nil
			}
			if err := e.executeModule(execCtx, r, moduleID); err != nil {
				failOnce.Do(func() {
					firstErr = err
					abort()
				})
			}
			return nil
		})
	}

	_ = eg.Wait()
	if firstErr == nil && runCtx.Err() != nil {
		// The deadline released waiters before every module ran.
		firstErr = runCtx.Err()
	}
	if firstErr != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			firstErr = fmt.Errorf("run exceeded %s timeout: %w", e.timeout, firstErr)
		}
		e.logger.Warn("workflow run failed", "workflow_id", wf.ID, "err", firstErr)
		return errorResult(r, started, firstErr)
	}

	e.logger.Info("workflow run succeeded", "workflow_id", wf.ID,
		"duration", time.Since(started).Round(time.Millisecond))
	return r.successResult(started)
}

// executeModule runs one module: liveness check, input resolution, config
// validation, and handler dispatch.
func (e *Engine) executeModule(ctx context.Context, r *run, moduleID string) error {
	mod, _ := r.graph.Module(moduleID)
	mt, _ := e.catalog.Get(mod.Type)

	if r.allInputsDead(moduleID) {
		r.markSkipped(moduleID)
		e.logger.Debug("module skipped", "module_id", moduleID)
		return nil
	}

	inputs, err := r.resolve(mod, mt)
	if err != nil {
		return r.fail(moduleID, err)
	}

	cfg := e.catalog.ApplyDefaults(mod.Type, mod.Config)
	if err := e.catalog.ValidateConfig(mod.Type, cfg); err != nil {
		return r.fail(moduleID, err)
	}

	handler, ok := e.registry.Handler(mod.Type)
	if !ok {
		return r.fail(moduleID, fmt.Errorf("no handler registered for module type %q", mod.Type))
	}

	outputs, err := handler.Execute(ctx, cfg, inputs)
	if err != nil {
		return r.fail(moduleID, err)
	}
	r.complete(moduleID, outputs)
	return nil
}

func errorResult(r *run, started time.Time, err error) *workflow.ExecutionResult {
	data := map[string]any{}
	if r != nil {
		r.setState(stateFailed)
		data = r.partialData(started)
	}
	return &workflow.ExecutionResult{
		Status: workflow.RunError,
		Data:   data,
		Error:  err.Error(),
	}
}
