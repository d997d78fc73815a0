package graph

import (
	"fmt"
	"sort"
)

// CycleError reports a workflow graph that is not acyclic. ModuleID names a
// module that lies on a cycle.
type CycleError struct {
	ModuleID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("graph: cycle detected through module %q", e.ModuleID)
}

// Order returns a topological order of module ids: every module appears
// after all of its predecessors. Ties among unordered modules break by
// ascending module id, so repeated runs of the same workflow schedule
// identically. Fails with *CycleError when the graph contains a cycle.
//
// Kahn's algorithm over the arena indices; the ready set is kept sorted by
// id so extraction is always the smallest ready module.
func (g *Graph) Order() ([]string, error) {
	inDegree := make([]int, len(g.modules))
	for ti, sources := range g.preds {
		inDegree[ti] = len(sources)
	}

	var ready []int
	for i, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, i)
		}
	}
	g.sortByID(ready)

	order := make([]string, 0, len(g.modules))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, g.modules[i].ID)

		var woken []int
		for _, s := range g.succs[i] {
			inDegree[s]--
			if inDegree[s] == 0 {
				woken = append(woken, s)
			}
		}
		if len(woken) > 0 {
			ready = append(ready, woken...)
			g.sortByID(ready)
		}
	}

	if len(order) != len(g.modules) {
		return nil, &CycleError{ModuleID: g.cycleMember(inDegree)}
	}
	return order, nil
}

func (g *Graph) sortByID(idx []int) {
	sort.Slice(idx, func(a, b int) bool {
		return g.modules[idx[a]].ID < g.modules[idx[b]].ID
	})
}

// cycleMember picks a module that is provably on a cycle. Every unordered
// module still has an unordered predecessor (that is what kept its in-degree
// positive), so walking predecessors from any unordered module must revisit
// a node, and the revisited node is on a cycle.
func (g *Graph) cycleMember(inDegree []int) string {
	var remaining []int
	for i, deg := range inDegree {
		if deg > 0 {
			remaining = append(remaining, i)
		}
	}
	g.sortByID(remaining)

	onPath := make(map[int]bool)
	cur := remaining[0]
	for !onPath[cur] {
		onPath[cur] = true
		// Step to the smallest-id unordered predecessor for determinism.
		next := -1
		for _, p := range g.preds[cur] {
			if inDegree[p] == 0 {
				continue
			}
			if next == -1 || g.modules[p].ID < g.modules[next].ID {
				next = p
			}
		}
		cur = next
	}
	return g.modules[cur].ID
}
