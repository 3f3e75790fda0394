// Package dgml renders include graphs as Directed Graph Markup Language documents,
// viewable in Visual Studio.
package dgml

import (
	"encoding/xml"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/includeparser/depgraph"
)

const namespace = "http://schemas.microsoft.com/vs/2009/dgml"

type document struct {
	XMLName    xml.Name   `xml:"DirectedGraph"`
	Xmlns      string     `xml:"xmlns,attr"`
	Title      string     `xml:"Title,attr,omitempty"`
	Nodes      []node     `xml:"Nodes>Node"`
	Links      []link     `xml:"Links>Link"`
	Categories []category `xml:"Categories>Category"`
}

type node struct {
	ID       string `xml:"Id,attr"`
	Label    string `xml:"Label,attr"`
	Category string `xml:"Category,attr,omitempty"`
}

type link struct {
	Source   string `xml:"Source,attr"`
	Target   string `xml:"Target,attr"`
	Label    string `xml:"Label,attr,omitempty"`
	Category string `xml:"Category,attr,omitempty"`
}

type category struct {
	ID         string `xml:"Id,attr"`
	Background string `xml:"Background,attr,omitempty"`
	Stroke     string `xml:"Stroke,attr,omitempty"`
}

var categories = []category{
	{ID: "Root", Background: "#FFADD8E6"},
	{ID: "Unresolved", Background: "#FFD3D3D3"},
	{ID: "Cycle", Stroke: "#FFD62728"},
}

// Formatter formats include graphs as DGML.
type Formatter struct{}

// Format converts the include graph to a DGML document. Node IDs are the full paths;
// labels are the short display names.
func (f *Formatter) Format(g *depgraph.IncludeGraph, opts formatters.RenderOptions) (string, error) {
	edges, err := g.Edges()
	if err != nil {
		return "", err
	}
	cycleIndex, err := formatters.CycleIndex(g)
	if err != nil {
		return "", err
	}
	names := formatters.BuildNodeNames(formatters.NodeIDs(g))

	doc := document{Xmlns: namespace, Title: opts.Label, Categories: categories}
	for _, n := range g.Nodes() {
		dn := node{ID: n.ID, Label: names[n.ID]}
		switch {
		case !n.Resolved:
			dn.Category = "Unresolved"
		case n.Root:
			dn.Category = "Root"
		}
		doc.Nodes = append(doc.Nodes, dn)
	}
	for _, e := range edges {
		l := link{Source: e.From, Target: e.To, Label: e.Spelling}
		if formatters.InCycle(cycleIndex, e) {
			l.Category = "Cycle"
		}
		doc.Links = append(doc.Links, l)
	}

	var sb strings.Builder
	sb.WriteString(xml.Header)
	enc := xml.NewEncoder(&sb)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// GenerateURL returns false as DGML has no online viewer.
func (f *Formatter) GenerateURL(output string) (string, bool) {
	return "", false
}
