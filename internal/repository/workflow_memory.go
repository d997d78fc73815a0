package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/hyeon/floe/internal/repository/memory"
	"github.com/hyeon/floe/internal/workflow"
)

// MemoryWorkflowRepository implements WorkflowRepository in-memory. The
// backing store copies workflows on every insert and read, so a workflow
// fetched by one request can be mutated freely while other requests read or
// replace the same id.
type MemoryWorkflowRepository struct {
	store *memory.Store[*workflow.Workflow]
}

func NewMemoryWorkflowRepository() *MemoryWorkflowRepository {
	return &MemoryWorkflowRepository{
		store: memory.New(
			func(wf *workflow.Workflow) string { return wf.ID },
			func(wf *workflow.Workflow) *workflow.Workflow { return wf.Copy() },
		),
	}
}

func (r *MemoryWorkflowRepository) Create(ctx context.Context, wf *workflow.Workflow) error {
	if err := r.store.Insert(ctx, wf); errors.Is(err, memory.ErrExists) {
		return ErrExists
	} else if err != nil {
		return err
	}
	return nil
}

func (r *MemoryWorkflowRepository) Get(ctx context.Context, id string) (*workflow.Workflow, error) {
	wf, err := r.store.Get(ctx, id)
	if errors.Is(err, memory.ErrNotFound) {
		return nil, ErrNotFound
	}
	return wf, err
}

// List returns all workflows sorted by id for stable output.
func (r *MemoryWorkflowRepository) List(ctx context.Context) ([]*workflow.Workflow, error) {
	all, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *MemoryWorkflowRepository) Update(ctx context.Context, wf *workflow.Workflow) error {
	if err := r.store.Replace(ctx, wf); errors.Is(err, memory.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return nil
}

func (r *MemoryWorkflowRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); errors.Is(err, memory.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return nil
}
