package dot

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/includeparser/depgraph"
)

const (
	rootColor       = "lightblue"
	unresolvedColor = "lightgray"
	cycleColor      = "red"
)

// Formatter formats include graphs as Graphviz DOT.
type Formatter struct{}

// Format converts the include graph to Graphviz DOT format.
func (f *Formatter) Format(g *depgraph.IncludeGraph, opts formatters.RenderOptions) (string, error) {
	edges, err := g.Edges()
	if err != nil {
		return "", err
	}
	cycleIndex, err := formatters.CycleIndex(g)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("digraph includes {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")
	if opts.Label != "" {
		sb.WriteString(fmt.Sprintf("  label=%q;\n", opts.Label))
		sb.WriteString("  labelloc=t;\n")
		sb.WriteString("  labeljust=l;\n")
		sb.WriteString("  fontsize=10;\n")
		sb.WriteString("  fontname=Courier;\n")
	}
	sb.WriteString("\n")

	nodes := g.Nodes()
	names := formatters.BuildNodeNames(formatters.NodeIDs(g))

	// Headers share one color unless several kinds are included; then the majority
	// extension stays white and the others get extension colors.
	var headers []string
	for _, n := range nodes {
		if n.Resolved && !n.Root {
			headers = append(headers, n.ID)
		}
	}
	extensionColors := formatters.GetExtensionColors(headers)
	majority := formatters.MajorityExtension(headers)

	for _, n := range nodes {
		name := names[n.ID]
		switch {
		case !n.Resolved:
			sb.WriteString(fmt.Sprintf("  %q [label=%q, style=\"filled,dashed\", fillcolor=%s];\n", name, name, unresolvedColor))
		case n.Root:
			sb.WriteString(fmt.Sprintf("  %q [label=%q, style=filled, fillcolor=%s];\n", name, name, rootColor))
		default:
			color := "white"
			if ext := filepath.Ext(n.ID); len(extensionColors) > 1 && ext != majority {
				if c, ok := extensionColors[ext]; ok {
					color = c
				}
			}
			sb.WriteString(fmt.Sprintf("  %q [label=%q, style=filled, fillcolor=%s];\n", name, name, color))
		}
	}
	if len(nodes) > 0 {
		sb.WriteString("\n")
	}

	for _, e := range edges {
		if formatters.InCycle(cycleIndex, e) {
			sb.WriteString(fmt.Sprintf("  %q -> %q [color=%s, penwidth=2];\n", names[e.From], names[e.To], cycleColor))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %q -> %q;\n", names[e.From], names[e.To]))
	}

	sb.WriteString("}")
	return sb.String(), nil
}

// GenerateURL creates a GraphvizOnline URL with the DOT graph embedded.
func (f *Formatter) GenerateURL(output string) (string, bool) {
	encoded := url.PathEscape(output)
	return fmt.Sprintf("https://dreampuf.github.io/GraphvizOnline/?engine=dot#%s", encoded), true
}
