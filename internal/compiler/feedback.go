package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shaunharker/conley-morse-database/internal/model"
)

// FeedbackLoop is a strongly connected set of variables in the
// interaction graph (source -> target).
//
// Feedback is what makes the switching dynamics interesting, so loops are
// reported as information, never as errors.
type FeedbackLoop struct {
	Variables []string `json:"variables"` // component members in declaration order
	Path      []string `json:"path"`      // one cycle through the component, e.g. ["u", "v", "u"]
	Message   string   `json:"message"`   // Human-readable description
}

// AnalyzeFeedback finds the feedback loops of spec.
//
// The algorithm:
//  1. Build the source -> target graph from every variable's sources
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1, and every self-loop
//
// Components are reported in order of their first variable's declaration.
// Unknown source names are ignored; Validate reports them.
func AnalyzeFeedback(spec *model.Spec) []FeedbackLoop {
	graph := buildInteractionGraph(spec)
	sccs := tarjanSCC(graph)

	loops := []FeedbackLoop{}
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			loops = append(loops, sccToLoop(scc, graph, spec.Names()))
		}
	}
	return loops
}

// interactionGraph is an adjacency list over variable indices.
type interactionGraph [][]int

func buildInteractionGraph(spec *model.Spec) interactionGraph {
	graph := make(interactionGraph, len(spec.Variables))
	for target, v := range spec.Variables {
		for _, src := range v.Sources {
			source, ok := spec.Lookup(src.Name)
			if !ok {
				continue
			}
			graph[source] = append(graph[source], target)
		}
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node int, graph interactionGraph) bool {
	for _, w := range graph[node] {
		if w == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Members of each component are sorted by declaration index and the
// components by their smallest member.
func tarjanSCC(graph interactionGraph) [][]int {
	var (
		index   = 0
		stack   []int
		indices = make([]int, len(graph))
		lowlink = make([]int, len(graph))
		onStack = make([]bool, len(graph))
		sccs    [][]int
	)
	for i := range indices {
		indices[i] = -1
	}

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if indices[w] < 0 {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the component
		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for node := range graph {
		if indices[node] < 0 {
			strongConnect(node)
		}
	}

	for _, scc := range sccs {
		slices.Sort(scc)
	}
	slices.SortFunc(sccs, func(a, b []int) int { return a[0] - b[0] })
	return sccs
}

// sccToLoop converts a component to a FeedbackLoop.
func sccToLoop(scc []int, graph interactionGraph, names []string) FeedbackLoop {
	lookup := func(idx []int) []string {
		out := make([]string, len(idx))
		for i, n := range idx {
			out[i] = names[n]
		}
		return out
	}
	labels := lookup(reconstructCyclePath(scc, graph))

	if len(scc) == 1 {
		return FeedbackLoop{
			Variables: lookup(scc),
			Path:      labels,
			Message:   fmt.Sprintf("Self-regulating variable: %s → %s", labels[0], labels[0]),
		}
	}
	return FeedbackLoop{
		Variables: lookup(scc),
		Path:      labels,
		Message:   fmt.Sprintf("Feedback loop through %d variables: %s", len(scc), strings.Join(labels, " → ")),
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: start at the first member, follow edges to unvisited members,
// continue until the start is reached again.
func reconstructCyclePath(scc []int, graph interactionGraph) []int {
	inSCC := make(map[int]bool, len(scc))
	for _, n := range scc {
		inSCC[n] = true
	}

	start := scc[0]
	current := start
	path := []int{current}
	visited := map[int]bool{}

	for {
		visited[current] = true

		next := -1
		for _, w := range graph[current] {
			if w == start && (len(path) > 1 || len(scc) == 1) {
				next = w
				break
			}
			if next < 0 && inSCC[w] && !visited[w] {
				next = w
			}
		}
		if next < 0 {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
