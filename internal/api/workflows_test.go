package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeon/floe/internal/api"
	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/engine"
	"github.com/hyeon/floe/internal/modules"
	"github.com/hyeon/floe/internal/provider"
	"github.com/hyeon/floe/internal/repository"
	"github.com/hyeon/floe/internal/workflow"
)

func newTestServer(t *testing.T) (http.Handler, repository.WorkflowRepository) {
	t.Helper()
	repo := repository.NewMemoryWorkflowRepository()
	cat := catalog.Default()
	eng := engine.New(cat, modules.DefaultRegistry(provider.NewRegistry(), t.TempDir()))
	return api.NewServer(repo, cat, eng).Handler(), repo
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeWorkflow(t *testing.T, rec *httptest.ResponseRecorder) workflow.Workflow {
	t.Helper()
	var wf workflow.Workflow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&wf))
	return wf
}

func TestListModuleTypes(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/module-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var types []catalog.ModuleType
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&types))
	assert.Len(t, types, 9)

	ids := make(map[string]bool, len(types))
	for _, mt := range types {
		ids[mt.ID] = true
	}
	assert.True(t, ids["text-input"])
	assert.True(t, ids["conditional"])
	assert.True(t, ids["transform"])
}

func TestCreateAndGetWorkflow(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/workflows", map[string]any{
		"name":        "My Flow",
		"description": "demo",
		"modules":     []map[string]any{{"id": "in", "type": "text-input"}},
		"connections": []map[string]any{},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeWorkflow(t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "My Flow", created.Name)
	assert.False(t, created.CreatedAt.IsZero())

	rec = doJSON(t, h, http.MethodGet, "/api/workflows/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeWorkflow(t, rec).ID)
}

func TestCreateWorkflow_MissingName(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/workflows", map[string]any{"description": "nameless"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateWorkflow_PartialFields(t *testing.T) {
	h, _ := newTestServer(t)

	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/workflows", map[string]any{
		"name":        "before",
		"description": "keep me",
	}))

	rec := doJSON(t, h, http.MethodPut, "/api/workflows/"+created.ID, map[string]any{
		"name": "after",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeWorkflow(t, rec)
	assert.Equal(t, "after", updated.Name)
	assert.Equal(t, "keep me", updated.Description, "unsent fields must survive")
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestDeleteWorkflow(t *testing.T) {
	h, _ := newTestServer(t)

	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/workflows", map[string]any{"name": "gone"}))

	rec := doJSON(t, h, http.MethodDelete, "/api/workflows/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/workflows/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/workflows/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCloneWorkflow(t *testing.T) {
	h, _ := newTestServer(t)

	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/workflows", map[string]any{
		"name":    "original",
		"modules": []map[string]any{{"id": "in", "type": "text-input", "config": map[string]any{"text": "x"}}},
	}))

	rec := doJSON(t, h, http.MethodPost, "/api/workflows/"+created.ID+"/clone", map[string]any{"name": "copy"})
	require.Equal(t, http.StatusCreated, rec.Code)

	clone := decodeWorkflow(t, rec)
	assert.NotEqual(t, created.ID, clone.ID)
	assert.Equal(t, "copy", clone.Name)
	assert.Equal(t, created.ID, clone.ParentWorkflow)
	require.Len(t, clone.Modules, 1)
	assert.Equal(t, "text-input", clone.Modules[0].Type)
}

func TestCloneWorkflow_RequiresName(t *testing.T) {
	h, _ := newTestServer(t)
	created := decodeWorkflow(t, doJSON(t, h, http.MethodPost, "/api/workflows", map[string]any{"name": "original"}))

	rec := doJSON(t, h, http.MethodPost, "/api/workflows/"+created.ID+"/clone", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkflowNotFound(t *testing.T) {
	h, _ := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/workflows/ghost"},
		{http.MethodPost, "/api/workflows/ghost/clone"},
		{http.MethodPost, "/api/workflows/ghost/execute"},
	} {
		rec := doJSON(t, h, tc.method, tc.path, map[string]any{"name": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}
}
