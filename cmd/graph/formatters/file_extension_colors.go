package formatters

import (
	"path/filepath"
	"sort"
)

var availableColors = []string{
	"lightblue", "lightyellow", "mistyrose", "lightsalmon",
	"lightpink", "lavender", "peachpuff", "plum", "powderblue", "khaki",
	"palegoldenrod", "thistle",
}

// GetExtensionColors assigns a fill color to every file extension in fileNames.
// Extensions are sorted before assignment so the result is stable.
func GetExtensionColors(fileNames []string) map[string]string {
	uniqueExtensions := make(map[string]bool)
	for _, fileName := range fileNames {
		if ext := filepath.Ext(fileName); ext != "" {
			uniqueExtensions[ext] = true
		}
	}

	sortedExtensions := make([]string, 0, len(uniqueExtensions))
	for ext := range uniqueExtensions {
		sortedExtensions = append(sortedExtensions, ext)
	}
	sort.Strings(sortedExtensions)

	extensionColors := make(map[string]string, len(sortedExtensions))
	for i, ext := range sortedExtensions {
		extensionColors[ext] = availableColors[i%len(availableColors)]
	}
	return extensionColors
}

// MajorityExtension returns the most common extension in fileNames. Ties go to the
// extension that sorts first.
func MajorityExtension(fileNames []string) string {
	counts := make(map[string]int)
	for _, fileName := range fileNames {
		counts[filepath.Ext(fileName)]++
	}

	extensions := make([]string, 0, len(counts))
	for ext := range counts {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)

	majority, maxCount := "", 0
	for _, ext := range extensions {
		if counts[ext] > maxCount {
			majority, maxCount = ext, counts[ext]
		}
	}
	return majority
}
