package formatters

import (
	"sort"

	"github.com/LegacyCodeHQ/includeparser/depgraph"
)

// RenderOptions contains optional parameters for rendering include graphs.
type RenderOptions struct {
	// Label is an optional title for the graph.
	Label string
}

// Formatter renders an include graph in a specific output format.
type Formatter interface {
	Format(g *depgraph.IncludeGraph, opts RenderOptions) (string, error)
	// GenerateURL returns a link to an online viewer for output, if the format has one.
	GenerateURL(output string) (string, bool)
}

// CycleIndex maps every file that is part of an include cycle to the index of its cycle.
func CycleIndex(g *depgraph.IncludeGraph) (map[string]int, error) {
	cycles, err := g.Cycles()
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	for i, cycle := range cycles {
		for _, file := range cycle {
			index[file] = i
		}
	}
	return index, nil
}

// InCycle reports whether e connects two files of the same cycle.
func InCycle(index map[string]int, e depgraph.Edge) bool {
	from, ok := index[e.From]
	if !ok {
		return false
	}
	to, ok := index[e.To]
	return ok && from == to
}

// NodeIDs returns the sorted IDs of all nodes in g.
func NodeIDs(g *depgraph.IncludeGraph) []string {
	nodes := g.Nodes()
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}
