package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hyeon/floe/internal/workflow"
)

// The definition column carries the whole workflow document as JSONB; the
// remaining columns are denormalized copies used for filtering and listing.

// CreateWorkflow stores a new workflow.
func (d *DB) CreateWorkflow(ctx context.Context, wf *workflow.Workflow) error {
	defJSON, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	_, err = d.Pool.ExecContext(ctx,
		`INSERT INTO workflows (id, name, definition, is_template, parent_workflow, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)`,
		wf.ID, wf.Name, defJSON, wf.IsTemplate, wf.ParentWorkflow, wf.CreatedBy, wf.CreatedAt, wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

// GetWorkflow retrieves a workflow by id. Returns an error wrapping
// sql.ErrNoRows when the id does not exist.
func (d *DB) GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error) {
	var defJSON []byte
	err := d.Pool.QueryRowContext(ctx,
		`SELECT definition FROM workflows WHERE id = $1`, id,
	).Scan(&defJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workflow %s: %w", id, sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}

	var wf workflow.Workflow
	if err := json.Unmarshal(defJSON, &wf); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return &wf, nil
}

// ListWorkflows returns all workflows, most recently updated first.
func (d *DB) ListWorkflows(ctx context.Context) ([]*workflow.Workflow, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT definition FROM workflows ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var result []*workflow.Workflow
	for rows.Next() {
		var defJSON []byte
		if err := rows.Scan(&defJSON); err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		var wf workflow.Workflow
		if err := json.Unmarshal(defJSON, &wf); err != nil {
			return nil, fmt.Errorf("unmarshal definition: %w", err)
		}
		result = append(result, &wf)
	}
	return result, rows.Err()
}

// UpdateWorkflow replaces a workflow definition by id.
func (d *DB) UpdateWorkflow(ctx context.Context, wf *workflow.Workflow) error {
	defJSON, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	res, err := d.Pool.ExecContext(ctx,
		`UPDATE workflows SET name = $1, definition = $2, is_template = $3, updated_at = $4 WHERE id = $5`,
		wf.Name, defJSON, wf.IsTemplate, wf.UpdatedAt, wf.ID,
	)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("workflow %s: %w", wf.ID, sql.ErrNoRows)
	}
	return nil
}

// DeleteWorkflow removes a workflow by id.
func (d *DB) DeleteWorkflow(ctx context.Context, id string) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("workflow %s: %w", id, sql.ErrNoRows)
	}
	return nil
}
