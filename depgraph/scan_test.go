package depgraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestScan_FollowsIncludesThroughSearchDirs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.cpp":          "#include \"main.hpp\"\n#include <foo.hpp>\n",
		"main.hpp":          "#include <foo.hpp>\n#include \"nope.h\"\n",
		"vendor/foo.hpp":    "#pragma once\n#include \"bar.hpp\"\n",
		"vendor/bar.hpp":    "int bar;\n",
		"vendor/unused.hpp": "int unused;\n",
	})
	vendor := filepath.Join(dir, "vendor")

	ig, err := Scan(context.Background(), []string{filepath.Join(dir, "main.cpp")}, ScanOptions{
		SearchDirs: []string{vendor},
	})
	require.NoError(t, err)

	edges, err := ig.Edges()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Edge{
		{From: filepath.Join(dir, "main.cpp"), To: filepath.Join(dir, "main.hpp"), Spelling: "main.hpp"},
		{From: filepath.Join(dir, "main.cpp"), To: filepath.Join(vendor, "foo.hpp"), Spelling: "foo.hpp"},
		{From: filepath.Join(dir, "main.hpp"), To: filepath.Join(vendor, "foo.hpp"), Spelling: "foo.hpp"},
		{From: filepath.Join(dir, "main.hpp"), To: "nope.h", Spelling: "nope.h"},
		{From: filepath.Join(vendor, "foo.hpp"), To: filepath.Join(vendor, "bar.hpp"), Spelling: "bar.hpp"},
	}, edges)
	assert.Equal(t, []string{"nope.h"}, ig.Unresolved())
}

func TestScan_SkipDirsAreNotDescended(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.c":        "#include <sys.h>\n",
		"system/sys.h":  "#include <deep.h>\n",
		"system/deep.h": "int deep;\n",
	})
	system := filepath.Join(dir, "system")

	ig, err := Scan(context.Background(), []string{filepath.Join(dir, "main.c")}, ScanOptions{
		SearchDirs: []string{system},
		SkipDirs:   []string{system},
	})
	require.NoError(t, err)

	edges, err := ig.Edges()
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{From: filepath.Join(dir, "main.c"), To: filepath.Join(system, "sys.h"), Spelling: "sys.h"},
	}, edges)
}

func TestScan_MultipleRoots(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.c":      "#include \"shared.h\"\n",
		"b.c":      "#include \"shared.h\"\n",
		"shared.h": "",
	})

	ig, err := Scan(context.Background(), []string{filepath.Join(dir, "a.c"), filepath.Join(dir, "b.c")}, ScanOptions{})
	require.NoError(t, err)

	var roots []string
	for _, n := range ig.Nodes() {
		if n.Root {
			roots = append(roots, n.ID)
		}
	}
	assert.Equal(t, []string{filepath.Join(dir, "a.c"), filepath.Join(dir, "b.c")}, roots)

	adjacency, err := ig.Adjacency()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "shared.h")}, adjacency[filepath.Join(dir, "a.c")])
	assert.Equal(t, []string{filepath.Join(dir, "shared.h")}, adjacency[filepath.Join(dir, "b.c")])
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := Scan(context.Background(), []string{filepath.Join(t.TempDir(), "missing.c")}, ScanOptions{})

	assert.Error(t, err)
}

func TestScan_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"main.c": "int main;\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, []string{filepath.Join(dir, "main.c")}, ScanOptions{})

	assert.ErrorIs(t, err, context.Canceled)
}
