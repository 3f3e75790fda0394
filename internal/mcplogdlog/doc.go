// Package mcplogdlog provides the debug log sink. Only dev builds forward anything.
package mcplogdlog
