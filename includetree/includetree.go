// Package includetree turns the tab-indented include tree text produced by a
// preprocessing session back into a tree.
package includetree

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/resolver"
)

// Item is one file in the include tree.
type Item struct {
	// Name is the line text without indentation. For the root it is the input file.
	Name string `json:"name"`
	// Path is the resolved absolute path, empty when the include was not found.
	Path string `json:"path,omitempty"`
	// Spelling is the include target as written in the source.
	Spelling string  `json:"spelling,omitempty"`
	NotFound bool    `json:"notFound,omitempty"`
	Children []*Item `json:"children,omitempty"`
}

// NewItem parses one tree line without its indentation.
func NewItem(line string) *Item {
	if spelling, ok := strings.CutSuffix(line, resolver.NotFoundMarker); ok {
		return &Item{Name: line, Spelling: spelling, NotFound: true}
	}
	item := &Item{Name: line, Path: line}
	if i := separatorIndex(line); i >= 0 {
		item.Path = line[:i]
		item.Spelling = line[i+len(resolver.SpellingSeparator):]
	}
	return item
}

// separatorIndex finds the separator between resolved path and spelling. Both may contain
// the separator, so the first split whose path ends with the spelling wins; spellings
// that do not survive cleaning, such as "../x.h", fall back to the last separator.
func separatorIndex(line string) int {
	sep := resolver.SpellingSeparator
	for i := strings.Index(line, sep); i >= 0; {
		path, spelling := line[:i], line[i+len(sep):]
		if spelling != "" && endsWithPath(path, filepath.Clean(spelling)) {
			return i
		}
		next := strings.Index(line[i+len(sep):], sep)
		if next < 0 {
			break
		}
		i += len(sep) + next
	}
	return strings.LastIndex(line, sep)
}

func endsWithPath(path, suffix string) bool {
	return path == suffix || strings.HasSuffix(path, string(filepath.Separator)+suffix)
}

// Parse builds the tree for raw below a root item named root. Lines indented deeper than
// one level below their predecessor are attached to the deepest open item.
func Parse(root, raw string) *Item {
	rootItem := &Item{Name: root, Path: root}
	stack := []*Item{rootItem}

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		text := strings.TrimLeft(line, "\t")
		depth := len(line) - len(text)
		if depth > len(stack)-1 {
			depth = len(stack) - 1
		}

		parent := stack[depth]
		child := NewItem(text)
		parent.Children = append(parent.Children, child)
		stack = append(stack[:depth+1], child)
	}

	return rootItem
}

// Walk visits item and its descendants depth first. depth is 0 for item itself.
func (item *Item) Walk(fn func(it *Item, depth int)) {
	var walk func(*Item, int)
	walk = func(it *Item, depth int) {
		fn(it, depth)
		for _, child := range it.Children {
			walk(child, depth+1)
		}
	}
	walk(item, 0)
}

// Files returns the sorted, distinct resolved paths in the tree, root included.
func (item *Item) Files() []string {
	seen := make(map[string]bool)
	item.Walk(func(it *Item, _ int) {
		if it.Path != "" {
			seen[it.Path] = true
		}
	})
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Unresolved returns the spellings of includes that were not found, in tree order.
func (item *Item) Unresolved() []string {
	var missing []string
	item.Walk(func(it *Item, _ int) {
		if it.NotFound {
			missing = append(missing, it.Spelling)
		}
	})
	return missing
}

// Render writes an indented, human-readable view of the tree.
func Render(w io.Writer, item *Item) error {
	var err error
	item.Walk(func(it *Item, depth int) {
		if err != nil {
			return
		}
		indent := strings.Repeat("  ", depth)
		switch {
		case depth == 0:
			_, err = fmt.Fprintf(w, "%s\n", it.Name)
		case it.NotFound:
			_, err = fmt.Fprintf(w, "%s%s (not found)\n", indent, it.Spelling)
		default:
			_, err = fmt.Fprintf(w, "%s%s -> %s\n", indent, it.Spelling, it.Path)
		}
	})
	return err
}
