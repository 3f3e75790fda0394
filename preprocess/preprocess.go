// Package preprocess runs one preprocessing session: it wires the include resolver into
// a macro engine, collects the engine's error events into a log and publishes the
// expanded output, the include tree and the log as registry handles.
package preprocess

import (
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/engine"
	"github.com/LegacyCodeHQ/includeparser/engine/cpp"
	"github.com/LegacyCodeHQ/includeparser/fsys"
	"github.com/LegacyCodeHQ/includeparser/registry"
	"github.com/LegacyCodeHQ/includeparser/resolver"
	"go.uber.org/zap"
)

// Result is the status code returned across the call boundary.
type Result int32

const (
	Failure Result = iota
	Success
)

func (r Result) String() string {
	if r == Success {
		return "success"
	}
	return "failure"
}

// Handles are the registry handles produced by ParseIncludes. Every handle must be
// read or released by the caller regardless of the Result.
type Handles struct {
	Output registry.Handle
	Tree   registry.Handle
	Log    registry.Handle
}

// EngineFactory creates a fresh engine for one session.
type EngineFactory func(fs fsys.FileSystem, logger *zap.Logger) engine.Engine

// DefaultEngine builds the bundled line-oriented preprocessor.
func DefaultEngine(fs fsys.FileSystem, logger *zap.Logger) engine.Engine {
	return cpp.New(fs, cpp.WithLogger(logger))
}

// Parser runs preprocessing sessions against a shared registry. Sessions keep their
// resolver and log state local, so a Parser may be used from several goroutines.
type Parser struct {
	registry  *registry.Registry
	fs        fsys.FileSystem
	newEngine EngineFactory
	logger    *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

func WithFileSystem(fs fsys.FileSystem) Option {
	return func(p *Parser) {
		p.fs = fs
	}
}

func WithEngine(factory EngineFactory) Option {
	return func(p *Parser) {
		p.newEngine = factory
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New returns a Parser publishing results into reg.
func New(reg *registry.Registry, opts ...Option) *Parser {
	p := &Parser{
		registry:  reg,
		fs:        fsys.OS{},
		newEngine: DefaultEngine,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the registry results are published into.
func (p *Parser) Registry() *registry.Registry {
	return p.registry
}

// SplitDefines splits a ';'-separated list of macro definitions, dropping empty entries.
func SplitDefines(config string) []string {
	var defines []string
	for _, part := range strings.Split(config, ";") {
		if part = strings.TrimSpace(part); part != "" {
			defines = append(defines, part)
		}
	}
	return defines
}

// FormatEvent renders an error event as a log entry.
func FormatEvent(ev engine.Event) string {
	return fmt.Sprintf("processing failed at line %d column %d (token '%s'):\n\t%s", ev.Line, ev.Column, ev.Token, ev.Info)
}

// ParseIncludes preprocesses inputFile with the ';'-separated include directories and
// macro definitions. The returned handles are always valid. Failure means at least one
// error event was raised; the log then describes every one of them and the output may
// be partial.
func (p *Parser) ParseIncludes(inputFile, includeDirectories, defines string) (Result, Handles) {
	logger := p.logger.With(zap.String("input", inputFile))

	var handles Handles
	var tree, log *registry.Entry
	handles.Tree, tree = p.registry.Allocate()
	handles.Log, log = p.registry.Allocate()

	result := Success

	eng := p.newEngine(p.fs, logger)
	for _, def := range SplitDefines(defines) {
		if err := eng.Define(def); err != nil {
			logger.Warn("rejected macro definition", zap.String("definition", def), zap.Error(err))
			_, _ = log.WriteString(FormatEvent(engine.Event{
				Severity: engine.SeverityError,
				Token:    def,
				Info:     err.Error(),
			}))
			result = Failure
		}
	}

	dirs := resolver.SplitSearchDirs(includeDirectories)
	res := resolver.New(p.fs, dirs, resolver.WithTree(tree), resolver.WithLogger(logger))
	eng.SetLocator(res)

	errorCount := 0
	eng.SetEventHandler(func(ev engine.Event) {
		if ev.Severity != engine.SeverityError {
			logger.Debug("processing event", zap.Stringer("severity", ev.Severity), zap.String("info", ev.Info))
			return
		}
		errorCount++
		_, _ = log.WriteString(FormatEvent(ev))
		result = Failure
	})

	var output *registry.Entry
	handles.Output, output = p.registry.Allocate()

	if err := eng.Process(inputFile, output); err != nil {
		logger.Info("processing stopped", zap.Error(err))
		result = Failure
	}

	logger.Debug("processing finished",
		zap.Stringer("result", result),
		zap.Int("errors", errorCount),
		zap.Strings("search_dirs", dirs))

	return result, handles
}

// LoadFile reads path into a new registry entry. On failure no handle is allocated.
func (p *Parser) LoadFile(path string) (Result, registry.Handle) {
	content, err := p.fs.ReadFile(path)
	if err != nil {
		p.logger.Info("failed to load file", zap.String("file", path), zap.Error(err))
		return Failure, 0
	}
	h, e := p.registry.Allocate()
	_, _ = e.Write(content)
	return Success, h
}
