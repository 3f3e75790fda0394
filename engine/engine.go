// Package engine describes the macro-expanding preprocessor that the include parser
// drives. The engine owns tokenizing, macro semantics and conditional compilation; it
// asks a Locator for the absolute path of every file it opens and reports problems as
// Events.
package engine

import (
	"fmt"
	"io"
)

// IncludeKind distinguishes how a file was requested.
type IncludeKind int

const (
	// MainFile is the root file handed to Process.
	MainFile IncludeKind = iota
	// IncludeLocal is #include "file".
	IncludeLocal
	// IncludeSystem is #include <file>.
	IncludeSystem
)

func (k IncludeKind) String() string {
	switch k {
	case MainFile:
		return "main"
	case IncludeLocal:
		return "local"
	case IncludeSystem:
		return "system"
	default:
		return fmt.Sprintf("IncludeKind(%d)", int(k))
	}
}

// Locator turns a spelled include into an absolute path. currentFile is the absolute
// path of the file containing the directive, or empty for the main file.
type Locator interface {
	Locate(currentFile, spelling string, kind IncludeKind) (string, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(currentFile, spelling string, kind IncludeKind) (string, error)

func (f LocatorFunc) Locate(currentFile, spelling string, kind IncludeKind) (string, error) {
	return f(currentFile, spelling, kind)
}

// Severity of a processing event.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Event is a structured notification raised while processing.
type Event struct {
	Severity Severity
	File     string
	Line     int
	Column   int
	Token    string
	Info     string
}

// EventHandler receives every event in the order the engine raises them.
type EventHandler func(Event)

// Engine is a configured, single-use preprocessor.
type Engine interface {
	// Define registers a macro given as NAME or NAME=VALUE.
	Define(definition string) error
	SetLocator(Locator)
	SetEventHandler(EventHandler)
	// Process expands file and writes the result to out. The returned error reports
	// conditions that stopped processing altogether; recoverable problems are only
	// raised as events.
	Process(file string, out io.Writer) error
}
