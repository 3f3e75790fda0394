package formatters_test

import (
	"testing"

	"github.com/LegacyCodeHQ/includeparser/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/includeparser/depgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExtensionColors_BasicFunctionality(t *testing.T) {
	fileNames := []string{
		"main.cpp",
		"widget.cpp",
		"widget.hpp",
		"config.h",
		"generated.inc",
	}

	colors := formatters.GetExtensionColors(fileNames)

	assert.Len(t, colors, 4)
	assert.Equal(t, "lightblue", colors[".cpp"])
	assert.Equal(t, "lightyellow", colors[".h"])
	assert.Equal(t, "mistyrose", colors[".hpp"])
	assert.Equal(t, "lightsalmon", colors[".inc"])
}

func TestGetExtensionColors_FilesWithoutExtensions(t *testing.T) {
	colors := formatters.GetExtensionColors([]string{"vector", "iostream", "main.cpp"})

	assert.Equal(t, map[string]string{".cpp": "lightblue"}, colors)
}

func TestGetExtensionColors_EmptyList(t *testing.T) {
	assert.Empty(t, formatters.GetExtensionColors(nil))
}

func TestMajorityExtension(t *testing.T) {
	assert.Equal(t, ".h", formatters.MajorityExtension([]string{"a.h", "b.h", "main.c"}))
	assert.Equal(t, ".c", formatters.MajorityExtension([]string{"a.h", "main.c"}))
	assert.Equal(t, "", formatters.MajorityExtension(nil))
}

func TestBuildNodeNames(t *testing.T) {
	names := formatters.BuildNodeNames([]string{
		"/src/main.c",
		"/src/net/config.h",
		"/src/db/config.h",
		"stdio.h",
	})

	assert.Equal(t, map[string]string{
		"/src/main.c":       "main.c",
		"/src/net/config.h": "net/config.h",
		"/src/db/config.h":  "db/config.h",
		"stdio.h":           "stdio.h",
	}, names)
}

func TestBuildNodeNames_SpellingCollidesWithPath(t *testing.T) {
	names := formatters.BuildNodeNames([]string{"sys/types.h", "/usr/include/sys/types.h"})

	assert.Equal(t, "sys/types.h", names["sys/types.h"])
	assert.Equal(t, "include/sys/types.h", names["/usr/include/sys/types.h"])
}

func TestParseOutputFormat(t *testing.T) {
	f, ok := formatters.ParseOutputFormat(" DGML ")
	assert.True(t, ok)
	assert.Equal(t, formatters.OutputFormatDGML, f)

	_, ok = formatters.ParseOutputFormat("svg")
	assert.False(t, ok)

	assert.Equal(t, "dot, json, mermaid, dgml", formatters.SupportedFormats())
}

func TestInCycle(t *testing.T) {
	g := depgraph.NewIncludeGraph()
	require.NoError(t, g.AddRoot("/main.c"))
	require.NoError(t, g.AddInclude("/main.c", "/a.h", "a.h", true))
	require.NoError(t, g.AddInclude("/a.h", "/b.h", "b.h", true))
	require.NoError(t, g.AddInclude("/b.h", "/a.h", "a.h", true))

	index, err := formatters.CycleIndex(g)
	require.NoError(t, err)

	assert.True(t, formatters.InCycle(index, depgraph.Edge{From: "/a.h", To: "/b.h"}))
	assert.True(t, formatters.InCycle(index, depgraph.Edge{From: "/b.h", To: "/a.h"}))
	assert.False(t, formatters.InCycle(index, depgraph.Edge{From: "/main.c", To: "/a.h"}))
}
