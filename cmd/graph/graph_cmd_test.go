package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	files := map[string]string{
		"main.c":          "#include \"app.h\"\n#ifdef USE_NET\n#include <net.h>\n#endif\n",
		"app.h":           "#include <sys/core.h>\n",
		"sys/core.h":      "int core;\n",
		"vendor/net.h":    "#include \"socket.h\"\n",
		"vendor/socket.h": "int sock;\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewCommand()
	cmd.SetArgs(args)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGraph_PreprocessedFollowsActiveIncludes(t *testing.T) {
	setupProject(t)

	stdout, _, err := execute(t, "main.c", "-I", ".;vendor")

	require.NoError(t, err)
	assert.Contains(t, stdout, `"main.c" -> "app.h";`)
	assert.Contains(t, stdout, `"app.h" -> "core.h";`)
	assert.NotContains(t, stdout, `"net.h"`)
}

func TestGraph_DefinesEnableIncludes(t *testing.T) {
	setupProject(t)

	stdout, _, err := execute(t, "main.c", "-I", ".", "-I", "vendor", "-D", "USE_NET")

	require.NoError(t, err)
	assert.Contains(t, stdout, `"main.c" -> "net.h";`)
	assert.Contains(t, stdout, `"net.h" -> "socket.h";`)
}

func TestGraph_StaticScanSeesEveryBranch(t *testing.T) {
	setupProject(t)

	stdout, _, err := execute(t, "main.c", "--static", "-I", ".;vendor", "-f", "mermaid")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "---\ntitle: main.c\n---\nflowchart LR\n"))
	assert.Contains(t, stdout, `["net.h"]`)
	assert.Contains(t, stdout, `["socket.h"]`)
}

func TestGraph_StaticScanSkipDirs(t *testing.T) {
	setupProject(t)

	stdout, _, err := execute(t, "main.c", "--static", "-I", ".;vendor", "--skip", "vendor")

	require.NoError(t, err)
	assert.Contains(t, stdout, `"main.c" -> "net.h";`)
	assert.NotContains(t, stdout, `"socket.h"`)
}

func TestGraph_UnresolvedIncludeWarns(t *testing.T) {
	setupProject(t)

	stdout, stderr, err := execute(t, "main.c", "-D", "USE_NET", "-f", "json")

	require.NoError(t, err)
	assert.Contains(t, stdout, `"unresolved": [`)
	assert.Contains(t, stdout, `"net.h"`)
	assert.Contains(t, stderr, "processed with errors")
}

func TestGraph_UnknownFormat(t *testing.T) {
	setupProject(t)

	_, _, err := execute(t, "main.c", "-f", "svg")

	assert.ErrorContains(t, err, "unknown format: svg")
}

func TestGraph_URLFallsBackForDGML(t *testing.T) {
	setupProject(t)

	stdout, stderr, err := execute(t, "main.c", "-I", ".", "-f", "dgml", "-u")

	require.NoError(t, err)
	assert.Contains(t, stderr, "URL generation is not supported for dgml format")
	assert.Contains(t, stdout, "<DirectedGraph")
}

func TestGraph_BetweenKeepsIncludePaths(t *testing.T) {
	setupProject(t)

	stdout, _, err := execute(t, "main.c", "-I", ".;vendor", "-D", "USE_NET", "-w", "main.c,vendor/socket.h")

	require.NoError(t, err)
	assert.Contains(t, stdout, `"main.c" -> "net.h";`)
	assert.Contains(t, stdout, `"net.h" -> "socket.h";`)
	assert.NotContains(t, stdout, `"app.h"`)
}

func TestGraph_BetweenRejectsUnknownFiles(t *testing.T) {
	setupProject(t)

	_, _, err := execute(t, "main.c", "-w", "main.c,nowhere.h")

	assert.ErrorContains(t, err, "files not found in graph: [nowhere.h]")
}
