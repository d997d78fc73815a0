package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/modules"
	"github.com/hyeon/floe/internal/provider"
	"github.com/hyeon/floe/internal/workflow"
)

type fakeTextClient struct {
	name  string
	reply func(ctx context.Context, req *provider.TextRequest) (string, error)
}

func (f *fakeTextClient) Name() string { return f.name }

func (f *fakeTextClient) GenerateText(ctx context.Context, req *provider.TextRequest) (string, error) {
	return f.reply(ctx, req)
}

func newTestEngine(t *testing.T, clients ...provider.TextGenerator) *Engine {
	t.Helper()
	reg := provider.NewRegistry()
	for _, c := range clients {
		reg.RegisterText(c)
	}
	return New(catalog.Default(), modules.DefaultRegistry(reg, t.TempDir()))
}

func moduleOutputs(t *testing.T, res *workflow.ExecutionResult, moduleID string) map[string]any {
	t.Helper()
	outs := res.Outputs(moduleID)
	if outs == nil {
		t.Fatalf("no outputs recorded for module %q: %v", moduleID, res.Data)
	}
	return outs
}

func TestExecute_HelloUpperScenario(t *testing.T) {
	wf := &workflow.Workflow{
		ID:   "wf-hello",
		Name: "hello",
		Modules: []workflow.Module{
			{ID: "in", Type: catalog.TypeTextInput, Config: map[string]any{"text": "hello"}},
			{ID: "tf", Type: catalog.TypeTransform, Config: map[string]any{"expression": `upper(input)`}},
			{ID: "out", Type: catalog.TypeTextOutput},
		},
		Connections: []workflow.Connection{
			{Source: "in", Target: "tf"},
			{Source: "tf", Target: "out"},
		},
	}

	res := newTestEngine(t).Execute(context.Background(), wf, nil)
	if res.Status != workflow.RunSuccess {
		t.Fatalf("status: got %s, error: %s", res.Status, res.Error)
	}
	if got := moduleOutputs(t, res, "tf")["output"]; got != "HELLO" {
		t.Errorf("transform output: got %v, want HELLO", got)
	}
	if got := moduleOutputs(t, res, "out")["text"]; got != "HELLO" {
		t.Errorf("terminal output: got %v, want HELLO", got)
	}
}

func TestExecute_PartialFailurePreservesCompleted(t *testing.T) {
	// A -> B -> C where B's expression cannot be evaluated: the result is an
	// error, A's output is preserved, and C never appears in data.
	wf := &workflow.Workflow{
		ID: "wf-partial",
		Modules: []workflow.Module{
			{ID: "a", Type: catalog.TypeTextInput, Config: map[string]any{"text": "start"}},
			{ID: "b", Type: catalog.TypeTransform, Config: map[string]any{"expression": `nonsense(`}},
			{ID: "c", Type: catalog.TypeTextOutput},
		},
		Connections: []workflow.Connection{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
		},
	}

	res := newTestEngine(t).Execute(context.Background(), wf, nil)
	if res.Status != workflow.RunError {
		t.Fatalf("status: got %s", res.Status)
	}
	if !strings.Contains(res.Error, `"b"`) {
		t.Errorf("error should name the failing module: %q", res.Error)
	}
	summary, ok := res.Data[workflow.SummaryKey].(workflow.Summary)
	if !ok {
		t.Fatalf("missing summary: %v", res.Data)
	}
	if summary.Statuses["b"] != workflow.StatusFailed {
		t.Errorf("b: got status %q, want failed", summary.Statuses["b"])
	}
	if got := moduleOutputs(t, res, "a")["text"]; got != "start" {
		t.Errorf("a's output missing from partial data: %v", res.Data)
	}
	if res.Outputs("c") != nil {
		t.Error("c must be absent from data")
	}
}

func TestExecute_ConditionalSkipPropagation(t *testing.T) {
	// in -> cond; cond.true -> taken-out; cond.false -> dropped-tf -> dropped-out.
	// With the condition true, everything reachable only through the false
	// branch is skipped, never dispatched.
	wf := &workflow.Workflow{
		ID: "wf-cond",
		Modules: []workflow.Module{
			{ID: "in", Type: catalog.TypeTextInput, Config: map[string]any{"text": "yes please"}},
			{ID: "cond", Type: catalog.TypeConditional, Config: map[string]any{"condition": `value contains "yes"`}},
			{ID: "taken-out", Type: catalog.TypeTextOutput},
			{ID: "dropped-tf", Type: catalog.TypeTransform, Config: map[string]any{"expression": `upper(input)`}},
			{ID: "dropped-out", Type: catalog.TypeTextOutput},
		},
		Connections: []workflow.Connection{
			{Source: "in", Target: "cond"},
			{Source: "cond", SourceHandle: "true", Target: "taken-out"},
			{Source: "cond", SourceHandle: "false", Target: "dropped-tf"},
			{Source: "dropped-tf", Target: "dropped-out"},
		},
	}

	res := newTestEngine(t).Execute(context.Background(), wf, nil)
	if res.Status != workflow.RunSuccess {
		t.Fatalf("status: got %s, error: %s", res.Status, res.Error)
	}
	if got := moduleOutputs(t, res, "taken-out")["text"]; got != "yes please" {
		t.Errorf("taken branch output: got %v", got)
	}

	summary, ok := res.Data[workflow.SummaryKey].(workflow.Summary)
	if !ok {
		t.Fatalf("missing summary: %v", res.Data)
	}
	for _, id := range []string{"dropped-tf", "dropped-out"} {
		if summary.Statuses[id] != workflow.StatusSkipped {
			t.Errorf("%s: got status %q, want skipped", id, summary.Statuses[id])
		}
		if res.Outputs(id) != nil {
			t.Errorf("%s must not have outputs", id)
		}
	}
}

func TestExecute_FanInRejectedBeforeScheduling(t *testing.T) {
	wf := &workflow.Workflow{
		ID: "wf-fanin",
		Modules: []workflow.Module{
			{ID: "a", Type: catalog.TypeTextInput, Config: map[string]any{"text": "1"}},
			{ID: "b", Type: catalog.TypeTextInput, Config: map[string]any{"text": "2"}},
			{ID: "out", Type: catalog.TypeTextOutput},
		},
		Connections: []workflow.Connection{
			{Source: "a", Target: "out"},
			{Source: "b", Target: "out"},
		},
	}

	res := newTestEngine(t).Execute(context.Background(), wf, nil)
	if res.Status != workflow.RunError {
		t.Fatalf("status: got %s", res.Status)
	}
	// Structural error: nothing ran, so no partial module data.
	if len(res.Data) != 0 {
		t.Errorf("expected empty data for structural failure, got %v", res.Data)
	}
}

func TestExecute_CycleFailsBeforeExecution(t *testing.T) {
	wf := &workflow.Workflow{
		ID: "wf-cycle",
		Modules: []workflow.Module{
			{ID: "t1", Type: catalog.TypeTransform, Config: map[string]any{"expression": "input"}},
			{ID: "t2", Type: catalog.TypeTransform, Config: map[string]any{"expression": "input"}},
		},
		Connections: []workflow.Connection{
			{Source: "t1", Target: "t2"},
			{Source: "t2", Target: "t1"},
		},
	}

	res := newTestEngine(t).Execute(context.Background(), wf, nil)
	if res.Status != workflow.RunError {
		t.Fatalf("status: got %s", res.Status)
	}
	if !strings.Contains(res.Error, "cycle") {
		t.Errorf("error should mention the cycle: %q", res.Error)
	}
}

func TestExecute_FailingProviderKeepsUpstreamOutputs(t *testing.T) {
	failing := &fakeTextClient{name: "openai", reply: func(context.Context, *provider.TextRequest) (string, error) {
		// Let the sibling input module finish before the failure cancels
		// the run.
		time.Sleep(50 * time.Millisecond)
		return "", &provider.ProviderError{Provider: "openai", StatusCode: 500, Transient: true, Message: "down"}
	}}

	wf := &workflow.Workflow{
		ID: "wf-provider",
		Modules: []workflow.Module{
			{ID: "a-in1", Type: catalog.TypeTextInput, Config: map[string]any{"text": "first"}},
			{ID: "a-in2", Type: catalog.TypeTextInput, Config: map[string]any{"text": "second"}},
			{ID: "model", Type: catalog.TypeOpenAIText, Config: map[string]any{"model": "gpt-4-turbo"}},
			{ID: "z-out", Type: catalog.TypeTextOutput},
		},
		Connections: []workflow.Connection{
			{Source: "a-in1", Target: "model", TargetHandle: "prompt"},
			{Source: "model", Target: "z-out"},
		},
	}

	res := newTestEngine(t, failing).Execute(context.Background(), wf, nil)
	if res.Status != workflow.RunError {
		t.Fatalf("status: got %s", res.Status)
	}
	if !strings.Contains(res.Error, "provider") {
		t.Errorf("error should carry the provider marker: %q", res.Error)
	}
	if got := moduleOutputs(t, res, "a-in1")["text"]; got != "first" {
		t.Errorf("first input output missing: %v", res.Data)
	}
	if got := moduleOutputs(t, res, "a-in2")["text"]; got != "second" {
		t.Errorf("second input output missing: %v", res.Data)
	}
}

func TestExecute_Deterministic(t *testing.T) {
	wf := &workflow.Workflow{
		ID: "wf-det",
		Modules: []workflow.Module{
			{ID: "in", Type: catalog.TypeTextInput, Config: map[string]any{"text": "seed"}},
			{ID: "t1", Type: catalog.TypeTransform, Config: map[string]any{"expression": `upper(input)`}},
			{ID: "t2", Type: catalog.TypeTransform, Config: map[string]any{"expression": `input + "!"`}},
			{ID: "o1", Type: catalog.TypeTextOutput},
			{ID: "o2", Type: catalog.TypeTextOutput},
		},
		Connections: []workflow.Connection{
			{Source: "in", Target: "t1"},
			{Source: "in", Target: "t2"},
			{Source: "t1", Target: "o1"},
			{Source: "t2", Target: "o2"},
		},
	}

	e := newTestEngine(t)
	first := e.Execute(context.Background(), wf, nil)
	if first.Status != workflow.RunSuccess {
		t.Fatalf("status: %s, error: %s", first.Status, first.Error)
	}
	for range 10 {
		again := e.Execute(context.Background(), wf, nil)
		for _, id := range []string{"in", "t1", "t2", "o1", "o2"} {
			a, b := first.Outputs(id), again.Outputs(id)
			for k := range a {
				if a[k] != b[k] {
					t.Fatalf("module %s output %s differs between runs: %v vs %v", id, k, a[k], b[k])
				}
			}
		}
	}
}

func TestExecute_ConfigErrorAbortsModule(t *testing.T) {
	client := &fakeTextClient{name: "openai", reply: func(context.Context, *provider.TextRequest) (string, error) {
		t.Error("provider must not be invoked with invalid config")
		return "", nil
	}}

	wf := &workflow.Workflow{
		ID: "wf-cfg",
		Modules: []workflow.Module{
			{ID: "in", Type: catalog.TypeTextInput, Config: map[string]any{"text": "p"}},
			{ID: "model", Type: catalog.TypeOpenAIText, Config: map[string]any{"temperature": 9.0}},
		},
		Connections: []workflow.Connection{
			{Source: "in", Target: "model", TargetHandle: "prompt"},
		},
	}

	res := newTestEngine(t, client).Execute(context.Background(), wf, nil)
	if res.Status != workflow.RunError {
		t.Fatalf("status: got %s", res.Status)
	}
	if !strings.Contains(res.Error, "invalid config") {
		t.Errorf("error should report invalid config: %q", res.Error)
	}
}

func TestExecute_InitialInputsFeedInputModules(t *testing.T) {
	wf := &workflow.Workflow{
		ID: "wf-initial",
		Modules: []workflow.Module{
			{ID: "in", Type: catalog.TypeTextInput},
			{ID: "out", Type: catalog.TypeTextOutput},
		},
		Connections: []workflow.Connection{{Source: "in", Target: "out"}},
	}

	res := newTestEngine(t).Execute(context.Background(), wf, map[string]map[string]any{
		"in": {"text": "from caller"},
	})
	if res.Status != workflow.RunSuccess {
		t.Fatalf("status: %s, error: %s", res.Status, res.Error)
	}
	if got := moduleOutputs(t, res, "out")["text"]; got != "from caller" {
		t.Errorf("got %v", got)
	}
}

func TestExecute_TimeoutCancelsRun(t *testing.T) {
	slow := &fakeTextClient{name: "openai", reply: func(ctx context.Context, req *provider.TextRequest) (string, error) {
		select {
		case <-time.After(2 * time.Second):
			return "late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}}

	wf := &workflow.Workflow{
		ID: "wf-timeout",
		Modules: []workflow.Module{
			{ID: "in", Type: catalog.TypeTextInput, Config: map[string]any{"text": "p"}},
			{ID: "model", Type: catalog.TypeOpenAIText},
		},
		Connections: []workflow.Connection{{Source: "in", Target: "model", TargetHandle: "prompt"}},
	}

	reg := provider.NewRegistry()
	reg.RegisterText(slow)
	e := New(catalog.Default(), modules.DefaultRegistry(reg, t.TempDir()), WithTimeout(50*time.Millisecond))

	startedAt := time.Now()
	res := e.Execute(context.Background(), wf, nil)
	if res.Status != workflow.RunError {
		t.Fatalf("status: got %s", res.Status)
	}
	if time.Since(startedAt) > time.Second {
		t.Error("run did not respect the timeout")
	}
}
