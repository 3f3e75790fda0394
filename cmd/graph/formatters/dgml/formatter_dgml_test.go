package dgml

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/LegacyCodeHQ/includeparser/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/includeparser/depgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Format(t *testing.T) {
	graph := depgraph.NewIncludeGraph()
	require.NoError(t, graph.AddRoot("/project/main.c"))
	require.NoError(t, graph.AddInclude("/project/main.c", "/project/a.h", "a.h", true))
	require.NoError(t, graph.AddInclude("/project/a.h", "/project/main.c", "main.c", true))
	require.NoError(t, graph.AddInclude("/project/a.h", "nope.h", "nope.h", false))

	formatter := Formatter{}
	output, err := formatter.Format(graph, formatters.RenderOptions{Label: "demo"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(output, xml.Header))

	var doc document
	require.NoError(t, xml.Unmarshal([]byte(output), &doc))

	assert.Equal(t, "demo", doc.Title)
	assert.Equal(t, []node{
		{ID: "/project/a.h", Label: "a.h"},
		{ID: "/project/main.c", Label: "main.c", Category: "Root"},
		{ID: "nope.h", Label: "nope.h", Category: "Unresolved"},
	}, doc.Nodes)
	assert.Equal(t, []link{
		{Source: "/project/a.h", Target: "/project/main.c", Label: "main.c", Category: "Cycle"},
		{Source: "/project/a.h", Target: "nope.h", Label: "nope.h"},
		{Source: "/project/main.c", Target: "/project/a.h", Label: "a.h", Category: "Cycle"},
	}, doc.Links)
	assert.Len(t, doc.Categories, 3)
}

func TestFormatter_GenerateURL(t *testing.T) {
	formatter := Formatter{}
	_, ok := formatter.GenerateURL("<DirectedGraph/>")

	assert.False(t, ok)
}
