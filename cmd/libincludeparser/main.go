// Command libincludeparser builds the include parser as a C shared library:
//
//	go build -buildmode=c-shared -o libincludeparser.so ./cmd/libincludeparser
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/LegacyCodeHQ/includeparser/capi"
)

//export Init
func Init() {
	capi.Init()
}

//export Exit
func Exit() {
	capi.Exit()
}

//export ResolveString
func ResolveString(handle C.int32_t, buffer *C.char, bufferSize C.int32_t) C.int32_t {
	if buffer == nil || bufferSize <= 0 {
		return C.int32_t(capi.Failure)
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(buffer)), int(bufferSize))
	return C.int32_t(capi.ResolveString(capi.Handle(handle), dst))
}

//export GetStringLength
func GetStringLength(handle C.int32_t, outBufferSize *C.int32_t) C.int32_t {
	var size int32
	result := capi.GetStringLength(capi.Handle(handle), &size)
	if result == capi.Success && outBufferSize != nil {
		*outBufferSize = C.int32_t(size)
	}
	return C.int32_t(result)
}

//export ParseIncludes
func ParseIncludes(inputFilename, includeDirectories, preprocessorDefinitions *C.char,
	outProcessedInputFile, outIncludeTree, outLog *C.int32_t) C.int32_t {
	var output, tree, log capi.Handle
	result := capi.ParseIncludes(
		C.GoString(inputFilename),
		C.GoString(includeDirectories),
		C.GoString(preprocessorDefinitions),
		&output, &tree, &log)
	*outProcessedInputFile = C.int32_t(output)
	*outIncludeTree = C.int32_t(tree)
	*outLog = C.int32_t(log)
	return C.int32_t(result)
}

//export ReadFile
func ReadFile(absoluteFilename *C.char, outContent *C.int32_t) C.int32_t {
	var h capi.Handle
	result := capi.ReadFile(C.GoString(absoluteFilename), &h)
	if result == capi.Success {
		*outContent = C.int32_t(h)
	}
	return C.int32_t(result)
}

func main() {}
