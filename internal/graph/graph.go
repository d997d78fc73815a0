// Package graph builds the executable view of a workflow: an arena-indexed
// adjacency structure over modules and connections, plus the topological
// scheduler that orders modules for execution.
package graph

import (
	"fmt"
	"sort"

	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/workflow"
)

// GraphError reports a malformed workflow structure: a connection that
// references a missing module, duplicate fan-in on one input handle, an
// ambiguous handle, or an unknown module type.
type GraphError struct {
	Reason string
}

func (e *GraphError) Error() string { return "graph: " + e.Reason }

func graphErrorf(format string, args ...any) *GraphError {
	return &GraphError{Reason: fmt.Sprintf(format, args...)}
}

// Source identifies the upstream output feeding an input handle.
type Source struct {
	ModuleID string
	Handle   string
}

// Graph is the validated, index-based adjacency view of one workflow.
// Module ids are interned to arena indices so scheduling is O(V+E).
type Graph struct {
	modules []workflow.Module
	index   map[string]int
	preds   [][]int
	succs   [][]int
	// inputs[i] maps a module's input handle to its resolved source.
	// Handles are concrete here: empty connection handles are defaulted
	// against the catalog at build time.
	inputs []map[string]Source
}

// Build validates wf's modules and connections against the catalog and
// returns the adjacency view. Fails with *GraphError on duplicate module
// ids, unknown module types, connections referencing missing modules,
// ambiguous handles, and duplicate fan-in on one (module, input) pair.
func Build(wf *workflow.Workflow, cat *catalog.Catalog) (*Graph, error) {
	g := &Graph{
		modules: wf.Modules,
		index:   make(map[string]int, len(wf.Modules)),
		preds:   make([][]int, len(wf.Modules)),
		succs:   make([][]int, len(wf.Modules)),
		inputs:  make([]map[string]Source, len(wf.Modules)),
	}

	for i, m := range wf.Modules {
		if m.ID == "" {
			return nil, graphErrorf("module at position %d has no id", i)
		}
		if _, dup := g.index[m.ID]; dup {
			return nil, graphErrorf("duplicate module id %q", m.ID)
		}
		if _, ok := cat.Get(m.Type); !ok {
			return nil, graphErrorf("module %q has unknown type %q", m.ID, m.Type)
		}
		g.index[m.ID] = i
		g.inputs[i] = make(map[string]Source)
	}

	for _, conn := range wf.Connections {
		si, ok := g.index[conn.Source]
		if !ok {
			return nil, graphErrorf("connection references unknown source module %q", conn.Source)
		}
		ti, ok := g.index[conn.Target]
		if !ok {
			return nil, graphErrorf("connection references unknown target module %q", conn.Target)
		}

		srcType, _ := cat.Get(g.modules[si].Type)
		tgtType, _ := cat.Get(g.modules[ti].Type)

		srcHandle, err := defaultHandle(conn.SourceHandle, srcType.OutputSchema, "output", conn.Source)
		if err != nil {
			return nil, err
		}
		if _, declared := srcType.OutputSchema[srcHandle]; !declared {
			return nil, graphErrorf("module %q (%s) has no output %q", conn.Source, srcType.ID, srcHandle)
		}

		tgtHandle, err := defaultHandle(conn.TargetHandle, tgtType.InputSchema, "input", conn.Target)
		if err != nil {
			return nil, err
		}
		if _, declared := tgtType.InputSchema[tgtHandle]; !declared {
			return nil, graphErrorf("module %q (%s) has no input %q", conn.Target, tgtType.ID, tgtHandle)
		}

		if prev, taken := g.inputs[ti][tgtHandle]; taken {
			return nil, graphErrorf("input %q of module %q receives connections from both %q and %q",
				tgtHandle, conn.Target, prev.ModuleID, conn.Source)
		}
		g.inputs[ti][tgtHandle] = Source{ModuleID: conn.Source, Handle: srcHandle}
		g.succs[si] = append(g.succs[si], ti)
		g.preds[ti] = append(g.preds[ti], si)
	}

	return g, nil
}

// defaultHandle resolves an empty handle to the sole declared port. A module
// with zero or multiple ports cannot be connected without a handle.
func defaultHandle(handle string, ports map[string]catalog.Port, kind, moduleID string) (string, error) {
	if handle != "" {
		return handle, nil
	}
	switch len(ports) {
	case 0:
		return "", graphErrorf("module %q has no %ss to connect", moduleID, kind)
	case 1:
		for name := range ports {
			return name, nil
		}
	}
	return "", graphErrorf("connection to module %q needs an explicit %s handle (%d candidates)",
		moduleID, kind, len(ports))
}

// Len returns the number of modules in the graph.
func (g *Graph) Len() int { return len(g.modules) }

// Module returns the module for an id.
func (g *Graph) Module(id string) (*workflow.Module, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.modules[i], true
}

// Predecessors returns the ids of all modules with a connection targeting
// the given module, sorted ascending.
func (g *Graph) Predecessors(id string) []string {
	return g.neighborIDs(id, g.preds)
}

// Successors returns the ids of all modules with a connection sourced from
// the given module, sorted ascending.
func (g *Graph) Successors(id string) []string {
	return g.neighborIDs(id, g.succs)
}

func (g *Graph) neighborIDs(id string, adj [][]int) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	seen := make(map[int]bool, len(adj[i]))
	ids := make([]string, 0, len(adj[i]))
	for _, n := range adj[i] {
		if seen[n] {
			continue
		}
		seen[n] = true
		ids = append(ids, g.modules[n].ID)
	}
	sort.Strings(ids)
	return ids
}

// InputsFor returns the mapping of input handle to upstream source for the
// given module. The returned map must not be mutated.
func (g *Graph) InputsFor(id string) map[string]Source {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.inputs[i]
}
