package engine

import (
	"errors"
	"testing"

	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/graph"
	"github.com/hyeon/floe/internal/workflow"
)

func buildGraph(t *testing.T, wf *workflow.Workflow) *graph.Graph {
	t.Helper()
	g, err := graph.Build(wf, catalog.Default())
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func TestResolveInputs_ConnectedHandleWins(t *testing.T) {
	wf := &workflow.Workflow{
		ID: "wf",
		Modules: []workflow.Module{
			{ID: "in", Type: catalog.TypeTextInput},
			{ID: "tf", Type: catalog.TypeTransform},
		},
		Connections: []workflow.Connection{{Source: "in", Target: "tf"}},
	}
	g := buildGraph(t, wf)
	mod, _ := g.Module("tf")
	mt, _ := catalog.Default().Get(catalog.TypeTransform)

	completed := map[string]map[string]any{"in": {"text": "wired"}}
	initial := map[string]map[string]any{"tf": {"input": "ignored"}}

	inputs, err := resolveInputs(mod, mt, g, completed, initial)
	if err != nil {
		t.Fatal(err)
	}
	if inputs["input"] != "wired" {
		t.Errorf("connected value must win over initial: got %v", inputs["input"])
	}
}

func TestResolveInputs_InitialFallback(t *testing.T) {
	wf := &workflow.Workflow{
		ID:      "wf",
		Modules: []workflow.Module{{ID: "in", Type: catalog.TypeTextInput}},
	}
	g := buildGraph(t, wf)
	mod, _ := g.Module("in")
	mt, _ := catalog.Default().Get(catalog.TypeTextInput)

	// text-input declares no inputs; initial values still pass through.
	inputs, err := resolveInputs(mod, mt, g, nil, map[string]map[string]any{
		"in": {"text": "external"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if inputs["text"] != "external" {
		t.Errorf("got %v", inputs["text"])
	}
}

// A connection is dead when its source completed without emitting the
// connected handle. A live module whose only feed for a required input is a
// dead connection must fail with MissingInputError rather than run with the
// input silently absent.
func TestResolveInputs_RequiredOverDeadConnection(t *testing.T) {
	cat, err := catalog.New([]catalog.ModuleType{
		{
			ID:           "splitter",
			ConfigSchema: map[string]any{"type": "object"},
			OutputSchema: map[string]catalog.Port{
				"left":  {Type: "string"},
				"right": {Type: "string"},
			},
		},
		{
			ID:           "merger",
			ConfigSchema: map[string]any{"type": "object"},
			InputSchema: map[string]catalog.Port{
				"a": {Type: "string", Required: true},
				"b": {Type: "string"},
			},
			OutputSchema: map[string]catalog.Port{"out": {Type: "string"}},
		},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	wf := &workflow.Workflow{
		ID: "wf",
		Modules: []workflow.Module{
			{ID: "s1", Type: "splitter"},
			{ID: "s2", Type: "splitter"},
			{ID: "m", Type: "merger"},
		},
		Connections: []workflow.Connection{
			{Source: "s1", SourceHandle: "left", Target: "m", TargetHandle: "a"},
			{Source: "s2", SourceHandle: "left", Target: "m", TargetHandle: "b"},
		},
	}
	g, err := graph.Build(wf, cat)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	mod, _ := g.Module("m")
	mt, _ := cat.Get("merger")

	// s1 completed but emitted only "right", so m's feed for "a" is dead
	// while the one for "b" is live. m itself is not skipped.
	completed := map[string]map[string]any{
		"s1": {"right": "elsewhere"},
		"s2": {"left": "x"},
	}

	_, err = resolveInputs(mod, mt, g, completed, nil)
	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("want *MissingInputError, got %v", err)
	}
	if missing.ModuleID != "m" || missing.Input != "a" {
		t.Errorf("unexpected fields: %+v", missing)
	}
}

func TestResolveInputs_MissingRequired(t *testing.T) {
	wf := &workflow.Workflow{
		ID:      "wf",
		Modules: []workflow.Module{{ID: "out", Type: catalog.TypeTextOutput}},
	}
	g := buildGraph(t, wf)
	mod, _ := g.Module("out")
	mt, _ := catalog.Default().Get(catalog.TypeTextOutput)

	_, err := resolveInputs(mod, mt, g, nil, nil)
	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("want *MissingInputError, got %v", err)
	}
	if missing.ModuleID != "out" || missing.Input != "text" {
		t.Errorf("unexpected fields: %+v", missing)
	}
}
