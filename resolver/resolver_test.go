package resolver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LegacyCodeHQ/includeparser/engine"
	"github.com/LegacyCodeHQ/includeparser/fsys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSplitSearchDirs(t *testing.T) {
	dirs := SplitSearchDirs("./inc;./vendor/;;  /usr/include ;a/../b")

	assert.Equal(t, []string{"inc", "vendor", "/usr/include", "b"}, dirs)
	assert.Empty(t, SplitSearchDirs(""))
}

func TestResolve_RelativeToIncluderWinsOverSearchDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "main.h"), "")
	writeFile(t, filepath.Join(root, "src", "common.h"), "// local")
	writeFile(t, filepath.Join(root, "inc", "common.h"), "// search dir")

	resolved, ok := Resolve(fsys.OS{}, []string{filepath.Join(root, "inc")}, filepath.Join(root, "src", "main.h"), "common.h")

	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "src", "common.h"), resolved)
	content, err := os.ReadFile(resolved)
	require.NoError(t, err)
	assert.Equal(t, "// local", string(content))
}

func TestResolve_AbsoluteSpellingShortCircuits(t *testing.T) {
	root := t.TempDir()
	absolute := filepath.Join(root, "elsewhere", "config.h")
	writeFile(t, absolute, "")
	writeFile(t, filepath.Join(root, "inc", "config.h"), "")
	writeFile(t, filepath.Join(root, "src", "main.h"), "")

	resolved, ok := Resolve(fsys.OS{}, []string{filepath.Join(root, "inc")}, filepath.Join(root, "src", "main.h"), absolute)

	require.True(t, ok)
	assert.Equal(t, absolute, resolved)
}

func TestResolve_SearchDirsInOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "second", "lib.h"), "")
	writeFile(t, filepath.Join(root, "third", "lib.h"), "")
	writeFile(t, filepath.Join(root, "src", "main.h"), "")

	dirs := []string{filepath.Join(root, "first"), filepath.Join(root, "second"), filepath.Join(root, "third")}
	resolved, ok := Resolve(fsys.OS{}, dirs, filepath.Join(root, "src", "main.h"), "lib.h")

	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "second", "lib.h"), resolved)
}

func TestResolve_NotFound(t *testing.T) {
	root := t.TempDir()

	_, ok := Resolve(fsys.OS{}, []string{root}, filepath.Join(root, "main.h"), "nope.h")
	assert.False(t, ok)

	_, ok = Resolve(fsys.OS{}, []string{root}, filepath.Join(root, "main.h"), "")
	assert.False(t, ok)
}

func TestResolve_DirectoryIsNotAFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "inc", "sys"), 0o755))

	_, ok := Resolve(fsys.OS{}, []string{filepath.Join(root, "inc")}, filepath.Join(root, "main.h"), "sys")
	assert.False(t, ok)
}

func TestLocate_MainFileIsNotRecorded(t *testing.T) {
	fs := fsys.Map{"/p/main.h": nil}
	var tree strings.Builder
	r := New(fs, nil, WithTree(&tree))

	resolved, err := r.Locate("", "/p/main.h", engine.MainFile)

	require.NoError(t, err)
	assert.Equal(t, "/p/main.h", resolved)
	assert.Empty(t, tree.String())
	assert.Equal(t, 0, r.Depth())
}

func TestLocate_MainFileNotFound(t *testing.T) {
	var tree strings.Builder
	r := New(fsys.Map{}, nil, WithTree(&tree))

	_, err := r.Locate("", "/p/main.h", engine.MainFile)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, tree.String())
}

func TestLocate_NestedIncludesAreIndented(t *testing.T) {
	fs := fsys.Map{
		"/p/a.h": nil,
		"/p/b.h": nil,
		"/p/c.h": nil,
	}
	var tree strings.Builder
	r := New(fs, nil, WithTree(&tree))

	_, err := r.Locate("", "/p/a.h", engine.MainFile)
	require.NoError(t, err)
	_, err = r.Locate("/p/a.h", "b.h", engine.IncludeLocal)
	require.NoError(t, err)
	_, err = r.Locate("/p/b.h", "c.h", engine.IncludeLocal)
	require.NoError(t, err)

	assert.Equal(t, "/p/b.h#b.h\n\t/p/c.h#c.h\n", tree.String())
	assert.Equal(t, []string{"/p/b.h", "/p/c.h"}, r.Stack())
}

func TestLocate_RealignsOnRevisitedIncluder(t *testing.T) {
	fs := fsys.Map{
		"/p/a.h": nil,
		"/p/b.h": nil,
		"/p/c.h": nil,
	}
	var tree strings.Builder
	r := New(fs, nil, WithTree(&tree))

	_, err := r.Locate("", "/p/a.h", engine.MainFile)
	require.NoError(t, err)
	_, err = r.Locate("/p/a.h", "b.h", engine.IncludeLocal)
	require.NoError(t, err)
	_, err = r.Locate("/p/a.h", "c.h", engine.IncludeLocal)
	require.NoError(t, err)

	assert.Equal(t, "/p/b.h#b.h\n/p/c.h#c.h\n", tree.String())
}

func TestLocate_RealignsToLastMatchingEntry(t *testing.T) {
	fs := fsys.Map{
		"/p/a.h": nil,
		"/p/b.h": nil,
		"/p/c.h": nil,
		"/p/d.h": nil,
	}
	var tree strings.Builder
	r := New(fs, nil, WithTree(&tree))

	_, _ = r.Locate("", "/p/a.h", engine.MainFile)
	_, _ = r.Locate("/p/a.h", "b.h", engine.IncludeLocal)
	_, _ = r.Locate("/p/b.h", "c.h", engine.IncludeLocal)
	_, _ = r.Locate("/p/c.h", "d.h", engine.IncludeLocal)
	// c.h finished; b.h continues with another include.
	_, err := r.Locate("/p/b.h", "d.h", engine.IncludeLocal)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(tree.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "\t\t/p/d.h#d.h", lines[2])
	assert.Equal(t, "\t/p/d.h#d.h", lines[3])
	assert.Equal(t, []string{"/p/b.h", "/p/d.h"}, r.Stack())
}

func TestLocate_NotFoundIsRecordedAndNotPushed(t *testing.T) {
	fs := fsys.Map{
		"/p/a.h": nil,
		"/p/b.h": nil,
		"/p/c.h": nil,
	}
	var tree strings.Builder
	r := New(fs, nil, WithTree(&tree))

	_, _ = r.Locate("", "/p/a.h", engine.MainFile)
	_, _ = r.Locate("/p/a.h", "b.h", engine.IncludeLocal)
	_, err := r.Locate("/p/b.h", "missing.h", engine.IncludeSystem)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.Locate("/p/b.h", "c.h", engine.IncludeLocal)
	require.NoError(t, err)

	assert.Equal(t, "/p/b.h#b.h\n\tmissing.h <not found!>\n\t/p/c.h#c.h\n", tree.String())
}

func TestLocate_SearchDirectoryResolution(t *testing.T) {
	root := t.TempDir()
	main := filepath.Join(root, "main.h")
	writeFile(t, main, `#include "sub.h"`)
	writeFile(t, filepath.Join(root, "vendor", "sub.h"), "")

	var tree strings.Builder
	r := New(fsys.OS{}, []string{filepath.Join(root, "inc"), filepath.Join(root, "vendor")}, WithTree(&tree))

	_, err := r.Locate("", main, engine.MainFile)
	require.NoError(t, err)
	resolved, err := r.Locate(main, "sub.h", engine.IncludeLocal)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "vendor", "sub.h"), resolved)
	assert.Equal(t, filepath.Join(root, "vendor", "sub.h")+"#sub.h\n", tree.String())
}

func TestLocate_WithoutTreeWriter(t *testing.T) {
	r := New(fsys.Map{"/p/a.h": nil, "/p/b.h": nil}, nil)

	_, err := r.Locate("/p/a.h", "b.h", engine.IncludeLocal)

	require.NoError(t, err)
	assert.Equal(t, 1, r.Depth())
}
