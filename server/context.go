package server

import (
	"net/http"

	"github.com/simon020286/go-workflow/builder"
)

// RequestIDHeader is read to reuse a caller supplied request ID
const RequestIDHeader = "X-Request-ID"

// ResponseContext is a RequestContext writing to an http.ResponseWriter
type ResponseContext struct {
	w        http.ResponseWriter
	id       string
	metadata map[string]any
	written  bool
}

// NewResponseContext creates the request context of r
func NewResponseContext(w http.ResponseWriter, r *http.Request) *ResponseContext {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = builder.GenerateRequestID()
	}

	values := r.URL.Query()
	query := make(map[string]any, len(values))
	for k := range values {
		query[k] = values.Get(k)
	}
	headers := make(map[string]any, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}

	return &ResponseContext{
		w:  w,
		id: id,
		metadata: map[string]any{
			"method":  r.Method,
			"path":    r.URL.Path,
			"query":   query,
			"headers": headers,
		},
	}
}

func (c *ResponseContext) WriteString(s string) (int, error) {
	if !c.written {
		if c.w.Header().Get("Content-Type") == "" {
			c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		c.written = true
	}
	return c.w.Write([]byte(s))
}

func (c *ResponseContext) RequestID() string {
	return c.id
}

func (c *ResponseContext) Metadata() map[string]any {
	return c.metadata
}

// Written reports whether any output reached the response
func (c *ResponseContext) Written() bool {
	return c.written
}
