// Package registry holds result strings behind opaque handles so that callers on the
// far side of a narrow call boundary can fetch them with a length query followed by a
// copy into a buffer they own.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
)

// Handle identifies one pending result. Handles are never reused.
type Handle int32

// ErrHandleNotFound is returned for handles that were never allocated or were already read.
var ErrHandleNotFound = errors.New("handle not found")

// Entry is the growable buffer behind a handle. It is written by a single processing
// session and must not be written once the handle has been handed out for reading.
type Entry struct {
	buf bytes.Buffer
}

// Write appends p to the entry.
func (e *Entry) Write(p []byte) (int, error) {
	return e.buf.Write(p)
}

// WriteString appends s to the entry.
func (e *Entry) WriteString(s string) (int, error) {
	return e.buf.WriteString(s)
}

// Len returns the content length in bytes, without terminator.
func (e *Entry) Len() int {
	return e.buf.Len()
}

// String returns the current content.
func (e *Entry) String() string {
	return e.buf.String()
}

// Registry maps handles to entries. All methods are safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	next    Handle
	entries map[Handle]*Entry
}

// New returns an empty registry. The first handle allocated is 0.
func New() *Registry {
	return &Registry{entries: make(map[Handle]*Entry)}
}

// Allocate creates an empty entry and returns its handle together with the entry so
// the caller can append to it without further lookups.
func (r *Registry) Allocate() (Handle, *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.next
	r.next++
	e := &Entry{}
	r.entries[h] = e
	return h, e
}

// Write appends content to the entry of h. Writing to an unknown handle means the
// registry is used incorrectly internally, so it panics.
func (r *Registry) Write(h Handle, content string) {
	r.mu.Lock()
	e, ok := r.entries[h]
	r.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("registry: write to unknown handle %d", h))
	}
	_, _ = e.WriteString(content)
}

// QueryLength returns the buffer size needed to hold the content of h including the
// terminating zero byte.
func (r *Registry) QueryLength(h Handle) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[h]
	if !ok {
		return 0, fmt.Errorf("query length of %d: %w", h, ErrHandleNotFound)
	}
	return e.Len() + 1, nil
}

// Read copies the content of h followed by a zero byte into dst and releases h.
// If dst is shorter than QueryLength reports, the copy is truncated to len(dst).
// The number of bytes copied is returned.
func (r *Registry) Read(h Handle, dst []byte) (int, error) {
	r.mu.Lock()
	e, ok := r.entries[h]
	if ok {
		delete(r.entries, h)
	}
	r.mu.Unlock()

	if !ok {
		return 0, fmt.Errorf("read %d: %w", h, ErrHandleNotFound)
	}

	content := e.buf.Bytes()
	n := copy(dst, content)
	if n < len(dst) {
		dst[n] = 0
		n++
	}
	return n, nil
}

// Resolve performs the length query and the read in one step and returns the content.
func (r *Registry) Resolve(h Handle) (string, error) {
	size, err := r.QueryLength(h)
	if err != nil {
		return "", err
	}
	buf := make([]byte, size)
	n, err := r.Read(h, buf)
	if err != nil {
		return "", err
	}
	return string(buf[:n-1]), nil
}

// Release drops h without reading it.
func (r *Registry) Release(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[h]; !ok {
		return fmt.Errorf("release %d: %w", h, ErrHandleNotFound)
	}
	delete(r.entries, h)
	return nil
}

// Clear drops every entry and returns how many there were. The handle counter is kept,
// so handles issued after Clear never collide with earlier ones.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	r.entries = make(map[Handle]*Entry)
	return n
}

// Pending returns the number of entries that have not been read or released.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
