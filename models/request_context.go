package models

import (
	"strings"

	"github.com/google/uuid"
)

// RequestContext is the per-request state owned by the host.
// Steps only append text to it and read the metadata the host provides.
type RequestContext interface {
	// WriteString appends text to the response output sink
	WriteString(s string) (int, error)
	// RequestID returns the identifier assigned by the host
	RequestID() string
	// Metadata returns host-provided request data (method, path, ...)
	Metadata() map[string]any
}

// BufferContext is an in-memory RequestContext.
// Used by the runner CLI and by tests.
type BufferContext struct {
	id       string
	metadata map[string]any
	out      strings.Builder
}

// NewBufferContext creates a BufferContext with a random request ID
func NewBufferContext(metadata map[string]any) *BufferContext {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &BufferContext{
		id:       uuid.NewString(),
		metadata: metadata,
	}
}

func (b *BufferContext) WriteString(s string) (int, error) {
	return b.out.WriteString(s)
}

func (b *BufferContext) RequestID() string {
	return b.id
}

func (b *BufferContext) Metadata() map[string]any {
	return b.metadata
}

// String returns everything written so far
func (b *BufferContext) String() string {
	return b.out.String()
}
