package formatters

import (
	"encoding/json"

	"github.com/LegacyCodeHQ/includeparser/depgraph"
)

type jsonGraph struct {
	Label      string          `json:"label,omitempty"`
	Nodes      []depgraph.Node `json:"nodes"`
	Edges      []depgraph.Edge `json:"edges"`
	Unresolved []string        `json:"unresolved,omitempty"`
	Cycles     [][]string      `json:"cycles,omitempty"`
}

// JSONFormatter formats include graphs as JSON.
type JSONFormatter struct{}

// Format converts the include graph to JSON.
func (f *JSONFormatter) Format(g *depgraph.IncludeGraph, opts RenderOptions) (string, error) {
	edges, err := g.Edges()
	if err != nil {
		return "", err
	}
	cycles, err := g.Cycles()
	if err != nil {
		return "", err
	}
	if edges == nil {
		edges = []depgraph.Edge{}
	}

	data, err := json.MarshalIndent(jsonGraph{
		Label:      opts.Label,
		Nodes:      g.Nodes(),
		Edges:      edges,
		Unresolved: g.Unresolved(),
		Cycles:     cycles,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GenerateURL returns false as JSON format does not support URL generation.
func (f *JSONFormatter) GenerateURL(output string) (string, bool) {
	return "", false
}
