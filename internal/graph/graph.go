package graph

import (
	"container/heap"
	"sort"

	"github.com/mmr-tortoise/refcell/internal/model"
)

// Edge is one ownership edge between allocations, identified by
// allocation name.
type Edge struct {
	From string
	To   string
	Kind model.LinkKind
}

// Report is the result of analyzing a scenario's ownership graph.
type Report struct {
	// Allocations lists all allocation names, in canonical (sorted) order.
	Allocations []string

	// StrongEdges and WeakEdges are the recorded link edges, deduplicated,
	// in canonical order.
	StrongEdges []Edge
	WeakEdges   []Edge

	// Cycle is one strong-edge cycle witness as a node-name path whose
	// first and last element are equal, or nil if the strong edges form
	// a DAG. Not an enumeration of all cycles — one stable witness.
	Cycle []string

	// Demote is the suggested fix when Cycle is non-nil: the back edge
	// of the witness, which demoted to weak breaks this cycle.
	Demote *Edge
}

// Leaks reports whether the analysis found a strong cycle.
func (r *Report) Leaks() bool {
	return len(r.Cycle) > 0
}

// Analyze builds the ownership graph from a validated scenario and runs
// cycle detection on its strong edges.
//
// Handle names are resolved to allocation names by symbolically walking
// the steps (clone and upgrade bind new names to existing allocations).
// The scenario is assumed to have passed scenario.Validate; unresolvable
// references are skipped rather than reported twice.
func Analyze(s *model.Scenario) *Report {
	// handle name → allocation name, tracked the same way the validator
	// and interpreter track bindings.
	alloc := map[string]string{}

	var nodes []string
	seen := map[string]bool{}
	edgeSeen := map[Edge]bool{}
	var strong, weak []Edge

	for _, st := range s.Steps {
		switch st.Op {
		case model.OpAlloc:
			alloc[st.Target] = st.Target
			if !seen[st.Target] {
				seen[st.Target] = true
				nodes = append(nodes, st.Target)
			}
		case model.OpClone, model.OpDowngrade, model.OpUpgrade:
			if a, ok := alloc[st.From]; ok {
				alloc[st.Target] = a
			}
		case model.OpDrop:
			// Bindings can be reused after a drop; forget the old one.
			delete(alloc, st.Target)
		case model.OpLink:
			from, okFrom := alloc[st.From]
			to, okTo := alloc[st.To]
			if !okFrom || !okTo {
				continue
			}
			kind, err := model.ParseLinkKind(st.Kind)
			if err != nil {
				continue
			}
			e := Edge{From: from, To: to, Kind: kind}
			if edgeSeen[e] {
				continue
			}
			edgeSeen[e] = true
			if kind == model.LinkStrong {
				strong = append(strong, e)
			} else {
				weak = append(weak, e)
			}
		}
	}

	sort.Strings(nodes)
	sortEdges(strong)
	sortEdges(weak)

	r := &Report{
		Allocations: nodes,
		StrongEdges: strong,
		WeakEdges:   weak,
	}

	r.Cycle = findStrongCycle(nodes, strong)
	if len(r.Cycle) >= 2 {
		// The witness path ends with the back edge closing the cycle:
		// demoting that single edge to weak breaks it.
		r.Demote = &Edge{
			From: r.Cycle[len(r.Cycle)-2],
			To:   r.Cycle[len(r.Cycle)-1],
			Kind: model.LinkWeak,
		}
	}
	return r
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// findStrongCycle proves the strong-edge graph acyclic with Kahn's
// algorithm; if any node is left unprocessed, a deterministic DFS over
// canonical indices extracts one cycle path for reporting.
//
// Determinism: nodes arrive sorted, adjacency lists are sorted, and the
// ready queue is a min-heap by canonical index, so the same scenario
// always yields the same witness.
func findStrongCycle(nodes []string, strong []Edge) []string {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	outgoing := make([][]int, len(nodes))
	indeg := make([]int, len(nodes))
	for _, e := range strong {
		u, v := index[e.From], index[e.To]
		outgoing[u] = append(outgoing[u], v)
		indeg[v]++
	}
	for _, adj := range outgoing {
		sort.Ints(adj)
	}

	// Kahn's algorithm: if the topological order covers every node, the
	// graph is acyclic and there is nothing to report.
	ready := &intMinHeap{}
	heap.Init(ready)
	remaining := make([]int, len(indeg))
	copy(remaining, indeg)
	for i := range remaining {
		if remaining[i] == 0 {
			heap.Push(ready, i)
		}
	}
	processed := 0
	for ready.Len() > 0 {
		u := heap.Pop(ready).(int)
		processed++
		for _, v := range outgoing[u] {
			remaining[v]--
			if remaining[v] == 0 {
				heap.Push(ready, v)
			}
		}
	}
	if processed == len(nodes) {
		return nil
	}

	// A cycle exists. White/gray/black DFS to extract one witness.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(nodes))
	parent := make([]int, len(nodes))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range outgoing[u] {
			if color[v] == white {
				parent[v] = u
				if dfs(v) {
					return true
				}
				continue
			}
			if color[v] == gray {
				// Back edge u → v: reconstruct v ... u → v.
				cycle = append(cycle, v)
				cur := u
				for cur != -1 && cur != v {
					cycle = append(cycle, cur)
					cur = parent[cur]
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := 0; i < len(nodes); i++ {
		if color[i] != white {
			continue
		}
		if dfs(i) {
			break
		}
	}
	if len(cycle) == 0 {
		return nil
	}

	// The walk above built the path in reverse; normalize to names in
	// forward order, keeping the closing repetition.
	out := make([]string, 0, len(cycle))
	for i := len(cycle) - 1; i >= 0; i-- {
		out = append(out, nodes[cycle[i]])
	}
	return out
}
