package why

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProject(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	files := map[string]string{
		"main.c":       "#include \"a.h\"\n#include \"b.h\"\n",
		"a.h":          "#include <common.h>\n",
		"b.h":          "#include \"a.h\"\n#include <common.h>\n#include <gone.h>\n",
		"inc/common.h": "int common;\n",
		"inc/unused.h": "int unused;\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	cmd.SetArgs(args)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return stdout.String(), err
}

func TestWhy_ListsChainsShortestFirst(t *testing.T) {
	setupProject(t)

	stdout, err := execute(t, "main.c", "inc/common.h", "-I", "inc")

	require.NoError(t, err)
	assert.Equal(t,
		"main.c -> a.h -> common.h\n"+
			"main.c -> b.h -> common.h\n"+
			"main.c -> b.h -> a.h -> common.h\n",
		stdout)
}

func TestWhy_MaxLimitsOutput(t *testing.T) {
	setupProject(t)

	stdout, err := execute(t, "main.c", "inc/common.h", "-I", "inc", "-n", "1")

	require.NoError(t, err)
	assert.Equal(t, "main.c -> a.h -> common.h\n... 2 more chain(s)\n", stdout)
}

func TestWhy_UnresolvedSpelling(t *testing.T) {
	setupProject(t)

	stdout, err := execute(t, "main.c", "gone.h", "-I", "inc", "--static")

	require.NoError(t, err)
	assert.Equal(t, "main.c -> b.h -> gone.h\n", stdout)
}

func TestWhy_NotIncluded(t *testing.T) {
	setupProject(t)

	_, err := execute(t, "main.c", "inc/unused.h", "-I", "inc")

	assert.ErrorContains(t, err, "inc/unused.h is not included by main.c")
}
