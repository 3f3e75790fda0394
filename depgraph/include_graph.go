package depgraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/LegacyCodeHQ/includeparser/includetree"
	graphlib "github.com/dominikbraun/graph"
)

const (
	attrResolved = "resolved"
	attrSpelling = "spelling"
)

// Node is a file in the include graph. Unresolved includes are nodes keyed by their
// spelling.
type Node struct {
	ID       string `json:"id"`
	Resolved bool   `json:"resolved"`
	Root     bool   `json:"root,omitempty"`
}

// Edge is one include relation.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Spelling string `json:"spelling,omitempty"`
}

// IncludeGraph is a directed graph of files including files.
type IncludeGraph struct {
	g     graphlib.Graph[string, string]
	nodes map[string]*Node
}

// NewIncludeGraph returns an empty graph.
func NewIncludeGraph() *IncludeGraph {
	return &IncludeGraph{
		g:     graphlib.New(graphlib.StringHash, graphlib.Directed()),
		nodes: make(map[string]*Node),
	}
}

// AddRoot adds a file that was processed as a main file.
func (ig *IncludeGraph) AddRoot(path string) error {
	return ig.addNode(path, true, true)
}

// AddInclude records that from includes to. For unresolved includes to is the spelling.
// Adding the same relation twice is a no-op.
func (ig *IncludeGraph) AddInclude(from, to, spelling string, resolved bool) error {
	if err := ig.addNode(from, true, false); err != nil {
		return err
	}
	if err := ig.addNode(to, resolved, false); err != nil {
		return err
	}
	err := ig.g.AddEdge(from, to, graphlib.EdgeAttribute(attrSpelling, spelling))
	if err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
		return fmt.Errorf("failed to add include %s -> %s: %w", from, to, err)
	}
	return nil
}

func (ig *IncludeGraph) addNode(id string, resolved, root bool) error {
	if n, ok := ig.nodes[id]; ok {
		n.Resolved = n.Resolved || resolved
		n.Root = n.Root || root
		return nil
	}

	err := ig.g.AddVertex(id, graphlib.VertexAttribute(attrResolved, fmt.Sprint(resolved)))
	if err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add %s: %w", id, err)
	}
	ig.nodes[id] = &Node{ID: id, Resolved: resolved, Root: root}
	return nil
}

// Nodes returns all nodes sorted by ID.
func (ig *IncludeGraph) Nodes() []Node {
	nodes := make([]Node, 0, len(ig.nodes))
	for _, n := range ig.nodes {
		nodes = append(nodes, *n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Edges returns all include relations sorted by source, then target.
func (ig *IncludeGraph) Edges() ([]Edge, error) {
	adjacency, err := ig.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	var edges []Edge
	for from, targets := range adjacency {
		for to, e := range targets {
			edges = append(edges, Edge{From: from, To: to, Spelling: e.Properties.Attributes[attrSpelling]})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges, nil
}

// Adjacency returns each node's sorted list of included nodes.
func (ig *IncludeGraph) Adjacency() (map[string][]string, error) {
	adjacency, err := ig.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(adjacency))
	for from, targets := range adjacency {
		deps := make([]string, 0, len(targets))
		for to := range targets {
			deps = append(deps, to)
		}
		sort.Strings(deps)
		result[from] = deps
	}
	return result, nil
}

// Unresolved returns the sorted spellings of includes that could not be resolved.
func (ig *IncludeGraph) Unresolved() []string {
	var missing []string
	for _, n := range ig.Nodes() {
		if !n.Resolved {
			missing = append(missing, n.ID)
		}
	}
	return missing
}

// Cycles returns every group of files that include each other, directly or through
// other files. Each group is sorted; groups are ordered by their first file.
func (ig *IncludeGraph) Cycles() ([][]string, error) {
	components, err := graphlib.StronglyConnectedComponents(ig.g)
	if err != nil {
		return nil, err
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) == 1 {
			if _, err := ig.g.Edge(component[0], component[0]); err != nil {
				continue
			}
		}
		cycle := append([]string(nil), component...)
		sort.Strings(cycle)
		cycles = append(cycles, cycle)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles, nil
}

// FromTree builds the graph of an include tree produced by a preprocessing run.
func FromTree(root *includetree.Item) (*IncludeGraph, error) {
	ig := NewIncludeGraph()
	if err := ig.AddTree(root); err != nil {
		return nil, err
	}
	return ig, nil
}

// AddTree adds root as a root file together with every include relation below it.
func (ig *IncludeGraph) AddTree(root *includetree.Item) error {
	if err := ig.AddRoot(root.Path); err != nil {
		return err
	}

	var add func(parent *includetree.Item) error
	add = func(parent *includetree.Item) error {
		for _, child := range parent.Children {
			to := child.Path
			if child.NotFound {
				to = child.Spelling
			}
			if err := ig.AddInclude(parent.Path, to, child.Spelling, !child.NotFound); err != nil {
				return err
			}
			if child.NotFound {
				continue
			}
			if err := add(child); err != nil {
				return err
			}
		}
		return nil
	}
	return add(root)
}
