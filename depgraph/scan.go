package depgraph

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/depgraph/cinclude"
	"github.com/LegacyCodeHQ/includeparser/fsys"
	"github.com/LegacyCodeHQ/includeparser/resolver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ScanOptions configures a static include scan.
type ScanOptions struct {
	FS fsys.FileSystem
	// SearchDirs are tried after the includer's own directory.
	SearchDirs []string
	// SkipDirs lists directories whose files are added to the graph but not scanned for
	// further includes, e.g. system or third-party headers.
	SkipDirs []string
	Logger   *zap.Logger
}

type scannedInclude struct {
	from, to, spelling string
	resolved           bool
}

// Scan builds an include graph for roots by reading include directives directly,
// without running a preprocessor. Every include is assumed to be active and every file
// is scanned once. Roots are scanned concurrently.
func Scan(ctx context.Context, roots []string, opts ScanOptions) (*IncludeGraph, error) {
	if opts.FS == nil {
		opts.FS = fsys.OS{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	absRoots := make([]string, len(roots))
	for i, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", root, err)
		}
		absRoots[i] = abs
	}

	results := make([][]scannedInclude, len(absRoots))
	g, gctx := errgroup.WithContext(ctx)
	for i, root := range absRoots {
		g.Go(func() error {
			includes, err := scanFrom(gctx, root, opts)
			if err != nil {
				return err
			}
			results[i] = includes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ig := NewIncludeGraph()
	for i, root := range absRoots {
		if err := ig.AddRoot(root); err != nil {
			return nil, err
		}
		for _, inc := range results[i] {
			if err := ig.AddInclude(inc.from, inc.to, inc.spelling, inc.resolved); err != nil {
				return nil, err
			}
		}
	}
	return ig, nil
}

func scanFrom(ctx context.Context, root string, opts ScanOptions) ([]scannedInclude, error) {
	read := fsys.Reader(opts.FS)
	if _, err := read(root); err != nil {
		return nil, err
	}

	var found []scannedInclude
	visited := map[string]bool{root: true}
	queue := []string{root}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file := queue[0]
		queue = queue[1:]

		includes, err := cinclude.FileIncludes(ctx, file, read)
		if err != nil {
			opts.Logger.Warn("unable to read included file", zap.String("file", file), zap.Error(err))
			continue
		}

		for _, inc := range includes {
			resolved, ok := resolver.Resolve(opts.FS, opts.SearchDirs, file, inc.Path)
			if !ok {
				found = append(found, scannedInclude{from: file, to: inc.Path, spelling: inc.Path})
				continue
			}
			found = append(found, scannedInclude{from: file, to: resolved, spelling: inc.Path, resolved: true})

			if visited[resolved] || isUnder(resolved, opts.SkipDirs) {
				continue
			}
			visited[resolved] = true
			queue = append(queue, resolved)
		}
	}

	return found, nil
}

func isUnder(path string, dirs []string) bool {
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(abs, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
