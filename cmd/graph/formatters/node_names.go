package formatters

import (
	"path/filepath"
	"strings"
)

// BuildNodeNames returns short, distinct display names for file paths. Files sharing a
// base name are told apart by adding parent directories until every name is unique.
// Unresolved includes keep their spelling as the starting point.
func BuildNodeNames(paths []string) map[string]string {
	names := make(map[string]string, len(paths))
	byBase := make(map[string][]string, len(paths))
	for _, path := range paths {
		base := filepath.Base(path)
		byBase[base] = append(byBase[base], path)
	}

	for base, group := range byBase {
		if len(group) == 1 {
			names[group[0]] = base
			continue
		}
		for depth := 2; ; depth++ {
			suffixes, ok := distinctSuffixes(group, depth)
			if !ok {
				continue
			}
			for i, path := range group {
				names[path] = suffixes[i]
			}
			break
		}
	}

	return names
}

func distinctSuffixes(paths []string, depth int) ([]string, bool) {
	seen := make(map[string]bool, len(paths))
	suffixes := make([]string, len(paths))
	unique, exhausted := true, true
	for i, path := range paths {
		suffix, full := pathSuffix(path, depth)
		unique = unique && !seen[suffix]
		exhausted = exhausted && full
		seen[suffix] = true
		suffixes[i] = suffix
	}
	return suffixes, unique || exhausted
}

// pathSuffix returns the last depth elements of path and whether that is all of it.
func pathSuffix(path string, depth int) (string, bool) {
	normalized := filepath.ToSlash(filepath.Clean(path))
	parts := strings.Split(strings.TrimPrefix(normalized, "/"), "/")
	if depth >= len(parts) {
		return normalized, true
	}
	return strings.Join(parts[len(parts)-depth:], "/"), false
}
