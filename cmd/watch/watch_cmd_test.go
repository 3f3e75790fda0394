package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/LegacyCodeHQ/includeparser/cmd/cmdutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestWatchSession_RebuildPrintsTreeAndReturnsFiles(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"main.c":      "#include <dep.h>\n",
		"inc/dep.h":   "int dep;\n",
		"inc/other.h": "int other;\n",
	})

	var out bytes.Buffer
	s := &watchSession{
		process: &cmdutil.ProcessFlags{IncludeDirs: []string{"inc"}},
		input:   "main.c",
		out:     &out,
		logger:  zap.NewNop(),
	}

	files, err := s.rebuild()
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "inc", "dep.h"), filepath.Join(dir, "main.c")}, files)
	assert.Contains(t, out.String(), "=== main.c: success\n")
	assert.Contains(t, out.String(), "  dep.h -> "+filepath.Join(dir, "inc", "dep.h")+"\n")
}

func TestWatchSession_RebuildTracksWhereMissingIncludesWouldAppear(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"main.c":       "#include \"late.h\"\n#include \"gone/x.h\"\n",
		"vendor/.keep": "",
	})

	s := &watchSession{
		process: &cmdutil.ProcessFlags{IncludeDirs: []string{"vendor"}},
		input:   "main.c",
		out:     &bytes.Buffer{},
		logger:  zap.NewNop(),
	}

	paths, err := s.rebuild()
	require.NoError(t, err)

	assert.Contains(t, paths, filepath.Join(dir, "main.c"))
	assert.Contains(t, paths, filepath.Join(dir, "late.h"))
	assert.Contains(t, paths, filepath.Join(dir, "vendor", "late.h"))
	assert.NotContains(t, paths, filepath.Join(dir, "gone", "x.h"))
	assert.NotContains(t, paths, filepath.Join(dir, "vendor", "gone", "x.h"))
}

func TestWatchSession_PublishesGraphWithStatus(t *testing.T) {
	setupProject(t, map[string]string{
		"main.c": "#include \"missing.h\"\n",
	})

	b := newBroker()
	var out bytes.Buffer
	s := &watchSession{
		process: &cmdutil.ProcessFlags{},
		input:   "main.c",
		out:     &out,
		logger:  zap.NewNop(),
		broker:  b,
	}

	_, err := s.rebuild()
	require.NoError(t, err)

	ch := b.subscribe()
	defer b.unsubscribe(ch)
	u := receive(t, ch)

	assert.Equal(t, "failure, 1 include(s) not found", u.Status)
	assert.Contains(t, u.DOT, `"main.c" -> "missing.h";`)
	assert.Contains(t, out.String(), "'missing.h' file not found")
}

func TestRunWatch_StopsWhenContextIsDone(t *testing.T) {
	setupProject(t, map[string]string{"main.c": "int main;\n"})

	cmd := &cobra.Command{}
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, runWatch(ctx, cmd, "main.c", &watchOptions{}))
	assert.Contains(t, stdout.String(), "=== main.c: success")
	assert.Contains(t, stderr.String(), "Watching main.c")
}
