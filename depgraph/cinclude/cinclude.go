// Package cinclude extracts #include directives from C and C++ sources without
// preprocessing them.
package cinclude

import (
	"context"
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/engine"
	"github.com/LegacyCodeHQ/includeparser/fsys"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Include is one #include directive found in a source file.
type Include struct {
	Path string
	Kind engine.IncludeKind
	// Line is the 1-based line of the directive.
	Line int
}

// FileIncludes reads filePath through read and returns its includes.
func FileIncludes(ctx context.Context, filePath string, read fsys.ContentReader) ([]Include, error) {
	sourceCode, err := read(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseIncludes(ctx, sourceCode)
}

// ParseIncludes parses C/C++ source code and extracts includes in source order,
// including those inside conditional blocks. Includes spelled through a macro are
// skipped since their target is only known after expansion.
func ParseIncludes(ctx context.Context, sourceCode []byte) ([]Include, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse C/C++ code: %w", err)
	}
	defer tree.Close()

	return extractIncludes(tree.RootNode(), sourceCode), nil
}

func extractIncludes(rootNode *sitter.Node, sourceCode []byte) []Include {
	var includes []Include

	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		if n.Type() == "preproc_include" {
			if inc := extractIncludeFromNode(n, sourceCode); inc.Path != "" {
				includes = append(includes, inc)
			}
			return
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}

	walk(rootNode)
	return includes
}

func extractIncludeFromNode(node *sitter.Node, sourceCode []byte) Include {
	line := int(node.StartPoint().Row) + 1
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "string_literal":
			return Include{Path: cleanStringLiteral(child.Content(sourceCode)), Kind: engine.IncludeLocal, Line: line}
		case "system_lib_string":
			return Include{Path: cleanSystemInclude(child.Content(sourceCode)), Kind: engine.IncludeSystem, Line: line}
		}
	}

	return Include{}
}

func cleanStringLiteral(raw string) string {
	return strings.Trim(raw, "\"' ")
}

func cleanSystemInclude(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "<")
	trimmed = strings.TrimSuffix(trimmed, ">")
	return strings.TrimSpace(trimmed)
}
