package formatters

import "strings"

// OutputFormat represents an output format type
type OutputFormat string

const (
	OutputFormatDOT     OutputFormat = "dot"
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatMermaid OutputFormat = "mermaid"
	OutputFormatDGML    OutputFormat = "dgml"
)

var supportedFormats = []OutputFormat{
	OutputFormatDOT,
	OutputFormatJSON,
	OutputFormatMermaid,
	OutputFormatDGML,
}

// String returns the string representation of the format
func (f OutputFormat) String() string {
	return string(f)
}

// ParseOutputFormat parses a case-insensitive format name.
func ParseOutputFormat(name string) (OutputFormat, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range supportedFormats {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// SupportedFormats returns the comma-separated list of format names.
func SupportedFormats() string {
	names := make([]string, len(supportedFormats))
	for i, f := range supportedFormats {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}
