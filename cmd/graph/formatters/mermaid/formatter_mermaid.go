package mermaid

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/includeparser/depgraph"
)

// Formatter formats include graphs as Mermaid.js flowcharts.
type Formatter struct{}

// Format converts the include graph to Mermaid.js flowchart format.
func (f *Formatter) Format(g *depgraph.IncludeGraph, opts formatters.RenderOptions) (string, error) {
	edges, err := g.Edges()
	if err != nil {
		return "", err
	}
	cycles, err := g.Cycles()
	if err != nil {
		return "", err
	}
	cycleIndex, err := formatters.CycleIndex(g)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if opts.Label != "" {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", opts.Label))
		sb.WriteString("---\n")
	}
	sb.WriteString("flowchart LR\n")

	ids := formatters.NodeIDs(g)
	names := formatters.BuildNodeNames(ids)

	for i, cycle := range cycles {
		parts := make([]string, 0, len(cycle)+1)
		for _, file := range cycle {
			parts = append(parts, names[file])
		}
		parts = append(parts, names[cycle[0]])
		sb.WriteString(fmt.Sprintf("%%%% C%d: %s\n", i+1, strings.Join(parts, " -> ")))
	}

	// Mermaid node IDs can't contain dots or slashes.
	nodeIDs := make(map[string]string, len(ids))
	for i, id := range ids {
		nodeIDs[id] = fmt.Sprintf("n%d", i)
	}

	var rootNodes, unresolvedNodes []string
	for _, n := range g.Nodes() {
		label := strings.ReplaceAll(names[n.ID], "\"", "#quot;")
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeIDs[n.ID], label))
		switch {
		case !n.Resolved:
			unresolvedNodes = append(unresolvedNodes, nodeIDs[n.ID])
		case n.Root:
			rootNodes = append(rootNodes, nodeIDs[n.ID])
		}
	}

	var cycleEdges []int
	if len(edges) > 0 {
		sb.WriteString("\n")
		for i, e := range edges {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", nodeIDs[e.From], nodeIDs[e.To]))
			if formatters.InCycle(cycleIndex, e) {
				cycleEdges = append(cycleEdges, i)
			}
		}
	}

	var styles strings.Builder
	if len(rootNodes) > 0 {
		styles.WriteString("    classDef root fill:#ADD8E6,stroke:#4682B4,color:#000000\n")
		styles.WriteString(fmt.Sprintf("    class %s root\n", strings.Join(rootNodes, ",")))
	}
	if len(unresolvedNodes) > 0 {
		styles.WriteString("    classDef unresolved fill:#D3D3D3,stroke:#808080,stroke-dasharray: 5 5,color:#000000\n")
		styles.WriteString(fmt.Sprintf("    class %s unresolved\n", strings.Join(unresolvedNodes, ",")))
	}
	for _, id := range ids {
		if _, ok := cycleIndex[id]; ok {
			styles.WriteString(fmt.Sprintf("    style %s stroke:#d62728,stroke-width:3px\n", nodeIDs[id]))
		}
	}
	for _, i := range cycleEdges {
		styles.WriteString(fmt.Sprintf("    linkStyle %d stroke:#d62728,stroke-width:3px\n", i))
	}
	if styles.Len() > 0 {
		sb.WriteString("\n")
		sb.WriteString(styles.String())
	}

	return strings.TrimSuffix(sb.String(), "\n"), nil
}

// GenerateURL creates a mermaid.live URL with the diagram embedded.
func (f *Formatter) GenerateURL(output string) (string, bool) {
	payload := map[string]interface{}{
		"code": output,
		"mermaid": map[string]interface{}{
			"theme": "default",
		},
		"autoSync":      true,
		"updateDiagram": true,
	}

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("https://mermaid.live/edit#%s", url.PathEscape(output)), true
	}

	encoded := base64.URLEncoding.EncodeToString(jsonBytes)
	return fmt.Sprintf("https://mermaid.live/edit#base64:%s", encoded), true
}
