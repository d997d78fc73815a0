package engine

import (
	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/graph"
	"github.com/hyeon/floe/internal/workflow"
)

// resolveInputs gathers one module's inputs. Connected handles take the
// recorded output of their upstream source; handles with no connection fall
// back to the caller's initial inputs keyed by module id and input name.
// Initial inputs pass through even for undeclared names, which is how input
// modules receive externally supplied values despite declaring no inputs.
//
// Execution order guarantees every live upstream module already completed;
// an absent source handle here means the value traveled a dead conditional
// branch and the input stays unset. Fails with *MissingInputError when a
// required input resolves through neither path.
func resolveInputs(
	mod *workflow.Module,
	mt catalog.ModuleType,
	g *graph.Graph,
	completed map[string]map[string]any,
	initial map[string]map[string]any,
) (map[string]any, error) {
	inputs := make(map[string]any)
	connected := g.InputsFor(mod.ID)

	for handle, src := range connected {
		if outs, done := completed[src.ModuleID]; done {
			if val, emitted := outs[src.Handle]; emitted {
				inputs[handle] = val
			}
		}
	}

	for name, val := range initial[mod.ID] {
		if _, wired := connected[name]; wired {
			continue
		}
		inputs[name] = val
	}

	for name, port := range mt.InputSchema {
		if !port.Required {
			continue
		}
		if _, ok := inputs[name]; !ok {
			return nil, &MissingInputError{ModuleID: mod.ID, Input: name}
		}
	}
	return inputs, nil
}
