package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hyeon/floe/internal/workflow"
)

// WorkflowDB defines the DB-layer methods needed by the persistent
// workflow repo. *db.DB satisfies this interface.
type WorkflowDB interface {
	CreateWorkflow(ctx context.Context, wf *workflow.Workflow) error
	GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error)
	ListWorkflows(ctx context.Context) ([]*workflow.Workflow, error)
	UpdateWorkflow(ctx context.Context, wf *workflow.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
}

// PersistentWorkflowRepository wraps MemoryWorkflowRepository with a
// PostgreSQL backend. Writes go to both. Reads try memory first; on miss,
// fall back to the DB and cache the result.
type PersistentWorkflowRepository struct {
	mem *MemoryWorkflowRepository
	db  WorkflowDB
}

func NewPersistentWorkflowRepository(mem *MemoryWorkflowRepository, db WorkflowDB) *PersistentWorkflowRepository {
	return &PersistentWorkflowRepository{mem: mem, db: db}
}

func (r *PersistentWorkflowRepository) Create(ctx context.Context, wf *workflow.Workflow) error {
	if err := r.mem.Create(ctx, wf); err != nil {
		return err
	}
	if err := r.db.CreateWorkflow(ctx, wf); err != nil {
		return fmt.Errorf("db create workflow: %w", err)
	}
	return nil
}

func (r *PersistentWorkflowRepository) Get(ctx context.Context, id string) (*workflow.Workflow, error) {
	if wf, err := r.mem.Get(ctx, id); err == nil {
		return wf, nil
	}
	wf, err := r.db.GetWorkflow(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	_ = r.mem.Create(ctx, wf)
	return wf, nil
}

func (r *PersistentWorkflowRepository) List(ctx context.Context) ([]*workflow.Workflow, error) {
	workflows, err := r.db.ListWorkflows(ctx)
	if err == nil {
		return workflows, nil
	}
	slog.Warn("db list workflows failed, falling back to in-memory", "err", err)
	return r.mem.List(ctx)
}

func (r *PersistentWorkflowRepository) Update(ctx context.Context, wf *workflow.Workflow) error {
	_ = r.mem.Update(ctx, wf)
	if err := r.db.UpdateWorkflow(ctx, wf); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("db update workflow: %w", err)
	}
	return nil
}

func (r *PersistentWorkflowRepository) Delete(ctx context.Context, id string) error {
	_ = r.mem.Delete(ctx, id)
	if err := r.db.DeleteWorkflow(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("db delete workflow: %w", err)
	}
	return nil
}
