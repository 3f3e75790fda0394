// Package capi is the narrow call boundary of the include parser. It exposes plain
// value parameters and status codes only, backed by one process-wide registry, so it
// can be exported through cgo unchanged.
package capi

import (
	"sync"

	"github.com/LegacyCodeHQ/includeparser/fsys"
	"github.com/LegacyCodeHQ/includeparser/internal/mcplogdlog"
	"github.com/LegacyCodeHQ/includeparser/preprocess"
	"github.com/LegacyCodeHQ/includeparser/registry"
	"go.uber.org/zap"
)

// Result mirrors preprocess.Result: Failure is 0, Success is 1.
type Result = preprocess.Result

const (
	Failure = preprocess.Failure
	Success = preprocess.Success
)

// Handle is a registry handle as seen by the caller.
type Handle = registry.Handle

var (
	mu     sync.Mutex
	reg    = registry.New()
	parser *preprocess.Parser
	logger = zap.NewNop()
)

// Init sets up the OS file system and, in dev builds, the debug log sink. Calling Init
// again is a no-op.
func Init() {
	mu.Lock()
	defer mu.Unlock()

	if parser != nil {
		return
	}
	logger = zap.New(mcplogdlog.Core())
	parser = preprocess.New(reg, preprocess.WithFileSystem(fsys.OS{}), preprocess.WithLogger(logger))
	logger.Debug("include parser initialized")
}

// Exit drops every unread result. Handles stay unique across Exit and a later Init.
func Exit() {
	mu.Lock()
	defer mu.Unlock()

	if parser == nil {
		return
	}
	logger.Debug("include parser shutting down", zap.Int("unread_results", reg.Clear()))
	_ = logger.Sync()
	parser = nil
	logger = zap.NewNop()
}

func current() *preprocess.Parser {
	mu.Lock()
	defer mu.Unlock()
	if parser == nil {
		parser = preprocess.New(reg, preprocess.WithLogger(logger))
	}
	return parser
}

// GetStringLength stores the buffer size needed for handle, terminator included.
func GetStringLength(handle Handle, outBufferSize *int32) Result {
	size, err := current().Registry().QueryLength(handle)
	if err != nil {
		return Failure
	}
	*outBufferSize = int32(size)
	return Success
}

// ResolveString copies the result of handle into buffer and releases the handle.
// A buffer shorter than GetStringLength reported receives a truncated copy.
func ResolveString(handle Handle, buffer []byte) Result {
	if _, err := current().Registry().Read(handle, buffer); err != nil {
		return Failure
	}
	return Success
}

// ParseIncludes preprocesses inputFile; see preprocess.Parser.ParseIncludes. The three
// handles are always set and must all be resolved by the caller.
func ParseIncludes(inputFile, includeDirectories, defines string, outProcessedInputFile, outIncludeTree, outLog *Handle) Result {
	result, handles := current().ParseIncludes(inputFile, includeDirectories, defines)
	*outProcessedInputFile = handles.Output
	*outIncludeTree = handles.Tree
	*outLog = handles.Log
	return result
}

// ReadFile loads a whole file into a new handle. Nothing is allocated on failure.
func ReadFile(path string, outContent *Handle) Result {
	result, h := current().LoadFile(path)
	if result == Success {
		*outContent = h
	}
	return result
}
