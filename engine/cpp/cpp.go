// Package cpp is a small line-oriented C preprocessor implementing engine.Engine.
//
// It understands include, object-like macro, conditional, pragma once and
// diagnostic directives. Function-like macros are recorded but never expanded.
package cpp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/engine"
	"github.com/LegacyCodeHQ/includeparser/fsys"
	"go.uber.org/zap"
)

// MaxIncludeDepth bounds include nesting.
const MaxIncludeDepth = 200

// ErrNoLocator is returned by Process when no locator was configured.
var ErrNoLocator = errors.New("no file locator configured")

type macro struct {
	name         string
	body         string
	params       []string
	functionLike bool
}

func (m macro) sameAs(other macro) bool {
	if m.functionLike != other.functionLike || m.body != other.body || len(m.params) != len(other.params) {
		return false
	}
	for i := range m.params {
		if m.params[i] != other.params[i] {
			return false
		}
	}
	return true
}

// Preprocessor is a single-use engine. Configure it, call Process once, discard it.
type Preprocessor struct {
	fs      fsys.FileSystem
	locator engine.Locator
	handler engine.EventHandler
	macros  map[string]macro
	once    map[string]bool
	logger  *zap.Logger
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithLogger sets the logger for engine diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Preprocessor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New returns a Preprocessor reading sources through fs.
func New(fs fsys.FileSystem, opts ...Option) *Preprocessor {
	p := &Preprocessor{
		fs:     fs,
		macros: make(map[string]macro),
		once:   make(map[string]bool),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Define registers NAME (defined as 1), NAME=VALUE or NAME= (empty body).
// A later definition of the same name replaces the earlier one.
func (p *Preprocessor) Define(definition string) error {
	definition = strings.TrimSpace(definition)
	name, body, hasValue := strings.Cut(definition, "=")
	name = strings.TrimSpace(name)
	if !isIdentifier(name) {
		return fmt.Errorf("invalid macro definition %q", definition)
	}
	if !hasValue {
		body = "1"
	}
	p.macros[name] = macro{name: name, body: strings.TrimSpace(body)}
	return nil
}

// Defined reports whether name is currently defined.
func (p *Preprocessor) Defined(name string) bool {
	_, ok := p.macros[name]
	return ok
}

func (p *Preprocessor) SetLocator(locator engine.Locator) {
	p.locator = locator
}

func (p *Preprocessor) SetEventHandler(handler engine.EventHandler) {
	p.handler = handler
}

// Process expands file into out. It fails only when the main file cannot be located or
// the output cannot be written; everything else is raised as an event.
func (p *Preprocessor) Process(file string, out io.Writer) error {
	if p.locator == nil {
		return ErrNoLocator
	}

	path, err := p.locator.Locate("", file, engine.MainFile)
	if err != nil {
		p.raise(engine.Event{
			Severity: engine.SeverityError,
			File:     file,
			Token:    file,
			Info:     fmt.Sprintf("cannot open source file '%s'", file),
		})
		return fmt.Errorf("failed to locate %s: %w", file, err)
	}

	w := bufio.NewWriter(out)
	p.processFile(path, w, 0)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (p *Preprocessor) raise(ev engine.Event) {
	p.logger.Debug("processing event",
		zap.Stringer("severity", ev.Severity),
		zap.String("file", ev.File),
		zap.Int("line", ev.Line),
		zap.Int("column", ev.Column),
		zap.String("token", ev.Token),
		zap.String("info", ev.Info))
	if p.handler != nil {
		p.handler(ev)
	}
}

// conditional is one open #if/#ifdef/#ifndef group.
type conditional struct {
	line, column int
	parentActive bool
	active       bool
	taken        bool
	sawElse      bool
}

type fileState struct {
	path  string
	depth int
	conds []conditional
	w     *bufio.Writer
}

func (s *fileState) active() bool {
	return len(s.conds) == 0 || s.conds[len(s.conds)-1].active
}

func (p *Preprocessor) processFile(path string, w *bufio.Writer, depth int) {
	content, err := p.fs.ReadFile(path)
	if err != nil {
		p.raise(engine.Event{
			Severity: engine.SeverityError,
			File:     path,
			Token:    path,
			Info:     fmt.Sprintf("cannot read file: %v", err),
		})
		return
	}

	p.logger.Debug("processing file", zap.String("file", path), zap.Int("depth", depth))

	s := &fileState{path: path, depth: depth, w: w}
	inComment := false
	for _, ln := range splitLines(string(content)) {
		// lead is the tail of a block comment opened on an earlier line.
		lead, text := "", ln.text
		if inComment {
			closing := strings.Index(text, "*/")
			if closing < 0 {
				if s.active() {
					_, _ = w.WriteString(ln.text)
					_ = w.WriteByte('\n')
				}
				continue
			}
			lead, text = text[:closing+2], text[closing+2:]
		}
		inComment = endsInBlockComment(text)

		trimmed := strings.TrimLeft(text, " \t")
		if strings.HasPrefix(trimmed, "#") {
			column := len(ln.text) - len(trimmed) + 1
			p.directive(s, ln.number, column, trimmed[1:])
			continue
		}
		if !s.active() {
			continue
		}
		_, _ = w.WriteString(lead + p.expand(text, nil))
		_ = w.WriteByte('\n')
	}

	for i := len(s.conds) - 1; i >= 0; i-- {
		c := s.conds[i]
		p.raise(engine.Event{
			Severity: engine.SeverityError,
			File:     path,
			Line:     c.line,
			Column:   c.column,
			Token:    "#",
			Info:     "unterminated conditional directive",
		})
	}
}

// directive handles the text following '#'. hashColumn is the 1-based column of '#'.
func (p *Preprocessor) directive(s *fileState, line, hashColumn int, text string) {
	afterHash := strings.TrimLeft(text, " \t")
	name, rest := splitIdentifier(afterHash)
	column := hashColumn + 1 + (len(text) - len(afterHash))
	rest = strings.TrimSpace(stripComments(rest))

	event := func(sev engine.Severity, token, info string) {
		p.raise(engine.Event{Severity: sev, File: s.path, Line: line, Column: column, Token: token, Info: info})
	}

	switch name {
	case "if", "ifdef", "ifndef":
		parent := s.active()
		var cond bool
		if parent {
			cond = p.condition(name, rest, event)
		}
		s.conds = append(s.conds, conditional{
			line:         line,
			column:       column,
			parentActive: parent,
			active:       parent && cond,
			taken:        parent && cond,
		})
		return
	case "elif":
		if len(s.conds) == 0 {
			event(engine.SeverityError, name, "#elif without #if")
			return
		}
		c := &s.conds[len(s.conds)-1]
		if c.sawElse {
			event(engine.SeverityError, name, "#elif after #else")
		}
		if !c.parentActive || c.taken {
			c.active = false
			return
		}
		c.active = p.condition("if", rest, event)
		c.taken = c.active
		return
	case "else":
		if len(s.conds) == 0 {
			event(engine.SeverityError, name, "#else without #if")
			return
		}
		c := &s.conds[len(s.conds)-1]
		if c.sawElse {
			event(engine.SeverityError, name, "#else after #else")
		}
		c.sawElse = true
		c.active = c.parentActive && !c.taken
		c.taken = c.taken || c.active
		return
	case "endif":
		if len(s.conds) == 0 {
			event(engine.SeverityError, name, "#endif without #if")
			return
		}
		s.conds = s.conds[:len(s.conds)-1]
		return
	}

	if !s.active() {
		return
	}

	switch name {
	case "":
		// Null directive, or a non-identifier such as a line marker.
		if strings.TrimSpace(afterHash) != "" && !startsWithDigit(afterHash) {
			event(engine.SeverityError, strings.Fields(afterHash)[0], "invalid preprocessing directive")
		}
	case "include":
		p.include(s, rest, event)
	case "define":
		p.define(rest, event)
	case "undef":
		undefName, _ := splitIdentifier(rest)
		if undefName == "" {
			event(engine.SeverityError, name, "macro name missing")
			return
		}
		delete(p.macros, undefName)
	case "pragma":
		if rest == "once" {
			p.once[s.path] = true
		}
	case "error":
		event(engine.SeverityError, name, rest)
	case "warning":
		event(engine.SeverityWarning, name, rest)
	case "line":
	default:
		event(engine.SeverityError, name, fmt.Sprintf("invalid preprocessing directive #%s", name))
	}
}

func (p *Preprocessor) condition(kind, rest string, event func(engine.Severity, string, string)) bool {
	switch kind {
	case "ifdef", "ifndef":
		name, _ := splitIdentifier(rest)
		if name == "" {
			event(engine.SeverityError, kind, "macro name missing")
			return false
		}
		_, defined := p.macros[name]
		if kind == "ifdef" {
			return defined
		}
		return !defined
	}

	value, err := p.evaluate(rest)
	if err != nil {
		var exprErr *expressionError
		token := kind
		if errors.As(err, &exprErr) && exprErr.token != "" {
			token = exprErr.token
		}
		event(engine.SeverityError, token, err.Error())
		return false
	}
	return value != 0
}

func (p *Preprocessor) include(s *fileState, rest string, event func(engine.Severity, string, string)) {
	target := rest
	if !strings.HasPrefix(target, "\"") && !strings.HasPrefix(target, "<") {
		target = strings.TrimSpace(p.expand(target, nil))
	}

	spelling, kind, ok := parseIncludeTarget(target)
	if !ok {
		token := "include"
		if fields := strings.Fields(rest); len(fields) > 0 {
			token = fields[0]
		}
		event(engine.SeverityError, token, "expected \"FILENAME\" or <FILENAME>")
		return
	}

	if s.depth+1 > MaxIncludeDepth {
		event(engine.SeverityError, spelling, "#include nested too deeply")
		return
	}

	resolved, err := p.locator.Locate(s.path, spelling, kind)
	if err != nil {
		event(engine.SeverityError, spelling, fmt.Sprintf("'%s' file not found", spelling))
		return
	}

	if p.once[resolved] {
		p.logger.Debug("skipping file marked pragma once", zap.String("file", resolved))
		return
	}

	p.processFile(resolved, s.w, s.depth+1)
}

func (p *Preprocessor) define(rest string, event func(engine.Severity, string, string)) {
	name, after := splitIdentifier(rest)
	if name == "" {
		event(engine.SeverityError, "define", "macro name missing")
		return
	}

	m := macro{name: name}
	if strings.HasPrefix(after, "(") {
		closing := strings.IndexByte(after, ')')
		if closing < 0 {
			event(engine.SeverityError, name, "missing ')' in macro parameter list")
			return
		}
		m.functionLike = true
		for _, param := range strings.Split(after[1:closing], ",") {
			if param = strings.TrimSpace(param); param != "" {
				m.params = append(m.params, param)
			}
		}
		after = after[closing+1:]
		event(engine.SeverityWarning, name, fmt.Sprintf("function-like macro '%s' is not expanded", name))
	}
	m.body = strings.TrimSpace(after)

	if existing, ok := p.macros[name]; ok && !existing.sameAs(m) {
		event(engine.SeverityError, name, fmt.Sprintf("'%s' macro redefined", name))
	}
	p.macros[name] = m
}

// parseIncludeTarget extracts the spelling of "file" or <file>.
func parseIncludeTarget(target string) (string, engine.IncludeKind, bool) {
	if len(target) < 2 {
		return "", 0, false
	}
	var closing byte
	var kind engine.IncludeKind
	switch target[0] {
	case '"':
		closing, kind = '"', engine.IncludeLocal
	case '<':
		closing, kind = '>', engine.IncludeSystem
	default:
		return "", 0, false
	}
	end := strings.IndexByte(target[1:], closing)
	if end <= 0 {
		return "", 0, false
	}
	return target[1 : 1+end], kind, true
}
