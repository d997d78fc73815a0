// Package repository defines storage interfaces for workflows.
package repository

import (
	"context"
	"errors"

	"github.com/hyeon/floe/internal/workflow"
)

// ErrNotFound is returned when a requested workflow does not exist.
var ErrNotFound = errors.New("workflow not found")

// ErrExists is returned by Create when the workflow id is already taken.
var ErrExists = errors.New("workflow already exists")

// WorkflowRepository abstracts workflow persistence so callers don't need to
// know whether storage is in-memory, PostgreSQL, or a mix.
type WorkflowRepository interface {
	Create(ctx context.Context, wf *workflow.Workflow) error
	Get(ctx context.Context, id string) (*workflow.Workflow, error)
	List(ctx context.Context) ([]*workflow.Workflow, error)
	Update(ctx context.Context, wf *workflow.Workflow) error
	Delete(ctx context.Context, id string) error
}
