package depgraph

import (
	"fmt"
	"sort"
	"strings"

	graphlib "github.com/dominikbraun/graph"
)

// Between returns the subgraph of every file that lies on an include path between any
// two of targets, in either direction. Targets missing from the graph are skipped.
func (ig *IncludeGraph) Between(targets []string) (*IncludeGraph, error) {
	var valid []string
	for _, f := range targets {
		if _, ok := ig.nodes[f]; ok {
			valid = append(valid, f)
		}
	}

	keep := make(map[string]bool)
	for _, f := range valid {
		keep[f] = true
	}

	forward, err := ig.Adjacency()
	if err != nil {
		return nil, err
	}
	reverse := make(map[string][]string, len(forward))
	for from, tos := range forward {
		for _, to := range tos {
			reverse[to] = append(reverse[to], from)
		}
	}

	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			for node := range pathNodes(forward, reverse, valid[i], valid[j]) {
				keep[node] = true
			}
			for node := range pathNodes(forward, reverse, valid[j], valid[i]) {
				keep[node] = true
			}
		}
	}

	return ig.subgraph(keep)
}

// pathNodes returns the nodes reachable from source that can also reach target. It is
// empty when target is unreachable.
func pathNodes(forward, reverse map[string][]string, source, target string) map[string]bool {
	fromSource := reachable(forward, source)
	result := make(map[string]bool)
	if !fromSource[target] {
		return result
	}
	for node := range reachable(reverse, target) {
		if fromSource[node] {
			result[node] = true
		}
	}
	return result
}

func reachable(adjacency map[string][]string, source string) map[string]bool {
	seen := map[string]bool{source: true}
	queue := []string{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[current] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

func (ig *IncludeGraph) subgraph(keep map[string]bool) (*IncludeGraph, error) {
	sub := NewIncludeGraph()
	for id := range keep {
		n := ig.nodes[id]
		if err := sub.addNode(n.ID, n.Resolved, n.Root); err != nil {
			return nil, err
		}
	}

	edges, err := ig.Edges()
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if !keep[e.From] || !keep[e.To] {
			continue
		}
		if err := sub.AddInclude(e.From, e.To, e.Spelling, ig.nodes[e.To].Resolved); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// Chains returns every include chain from one file to another without repeating a file,
// shortest first. It returns an empty result when to is not reachable from from.
func (ig *IncludeGraph) Chains(from, to string) ([][]string, error) {
	for _, id := range []string{from, to} {
		if _, ok := ig.nodes[id]; !ok {
			return nil, fmt.Errorf("%s: %w", id, graphlib.ErrVertexNotFound)
		}
	}

	chains, err := graphlib.AllPathsBetween(ig.g, from, to)
	if err != nil {
		return nil, err
	}
	sort.Slice(chains, func(i, j int) bool {
		if len(chains[i]) != len(chains[j]) {
			return len(chains[i]) < len(chains[j])
		}
		return strings.Join(chains[i], "\x00") < strings.Join(chains[j], "\x00")
	})
	return chains, nil
}
