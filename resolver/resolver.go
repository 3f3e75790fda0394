// Package resolver locates included files and records the include tree while the
// preprocessing engine walks the sources.
package resolver

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/engine"
	"github.com/LegacyCodeHQ/includeparser/fsys"
	"go.uber.org/zap"
)

// ErrNotFound is returned when an include cannot be resolved by any search strategy.
var ErrNotFound = errors.New("include not found")

// NotFoundMarker follows the spelling on tree lines of unresolved includes.
const NotFoundMarker = " <not found!>"

// SpellingSeparator separates the resolved path from the original spelling on tree lines.
const SpellingSeparator = "#"

// SplitSearchDirs splits a ';'-separated directory list and cleans every entry.
// Empty entries are dropped.
func SplitSearchDirs(config string) []string {
	var dirs []string
	for _, part := range strings.Split(config, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dirs = append(dirs, filepath.Clean(part))
	}
	return dirs
}

// Resolver implements engine.Locator. One Resolver serves one processing session and
// is not safe for concurrent use.
type Resolver struct {
	fs     fsys.FileSystem
	dirs   []string
	stack  []string
	tree   io.StringWriter
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTree sets where include tree lines are written. Without it the tree is discarded.
func WithTree(tree io.StringWriter) Option {
	return func(r *Resolver) {
		r.tree = tree
	}
}

// New returns a Resolver searching dirs in order after the absolute and
// relative-to-includer lookups.
func New(fs fsys.FileSystem, dirs []string, opts ...Option) *Resolver {
	r := &Resolver{
		fs:     fs,
		dirs:   append([]string(nil), dirs...),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SearchDirs returns the configured search directories.
func (r *Resolver) SearchDirs() []string {
	return append([]string(nil), r.dirs...)
}

// Depth returns the current length of the inclusion stack.
func (r *Resolver) Depth() int {
	return len(r.stack)
}

// Stack returns a copy of the inclusion stack, outermost include first.
func (r *Resolver) Stack() []string {
	return append([]string(nil), r.stack...)
}

// Locate is called by the engine once per include directive and once for the main file.
func (r *Resolver) Locate(currentFile, spelling string, kind engine.IncludeKind) (string, error) {
	r.realign(currentFile)

	resolved, ok := Resolve(r.fs, r.dirs, currentFile, spelling)

	if kind == engine.MainFile {
		if !ok {
			r.logger.Debug("main file not found", zap.String("file", spelling))
			return "", fmt.Errorf("%s: %w", spelling, ErrNotFound)
		}
		return resolved, nil
	}

	indent := strings.Repeat("\t", len(r.stack))
	if !ok {
		r.writeTree(indent + spelling + NotFoundMarker + "\n")
		r.logger.Debug("include not found",
			zap.String("includer", currentFile),
			zap.String("spelling", spelling),
			zap.Int("depth", len(r.stack)))
		return "", fmt.Errorf("%s included from %s: %w", spelling, currentFile, ErrNotFound)
	}

	r.writeTree(indent + resolved + SpellingSeparator + spelling + "\n")
	r.stack = append(r.stack, resolved)
	r.logger.Debug("include resolved",
		zap.String("includer", currentFile),
		zap.String("spelling", spelling),
		zap.String("resolved", resolved),
		zap.Int("depth", len(r.stack)-1))
	return resolved, nil
}

// realign truncates the stack to just after the last occurrence of currentFile, or
// empties it. The engine may revisit files it already processed, so the call order is
// not a strict push/pop recursion.
func (r *Resolver) realign(currentFile string) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i] == currentFile {
			r.stack = r.stack[:i+1]
			return
		}
	}
	r.stack = r.stack[:0]
}

func (r *Resolver) writeTree(line string) {
	if r.tree == nil {
		return
	}
	_, _ = r.tree.WriteString(line)
}

// Resolve finds the file named by spelling. The lookup order is: spelling as a complete
// path, spelling relative to the directory of currentFile, then every directory of dirs
// in order. The first existing file wins and is returned as a cleaned absolute path.
func Resolve(fs fsys.FileSystem, dirs []string, currentFile, spelling string) (string, bool) {
	if spelling == "" {
		return "", false
	}

	if fs.Exists(spelling) {
		return absolute(spelling), true
	}

	if currentFile != "" && !filepath.IsAbs(spelling) {
		candidate := filepath.Join(filepath.Dir(currentFile), spelling)
		if fs.Exists(candidate) {
			return absolute(candidate), true
		}
	}

	if filepath.IsAbs(spelling) {
		return "", false
	}
	for _, dir := range dirs {
		candidate := filepath.Join(dir, spelling)
		if fs.Exists(candidate) {
			return absolute(candidate), true
		}
	}

	return "", false
}

func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
