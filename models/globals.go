package models

import "context"

type globalsKey struct{}

// Globals holds workflow-level values shared by every request
type Globals struct {
	Variables map[string]any
	Secrets   map[string]any
}

// WithGlobals returns a context carrying the workflow globals
func WithGlobals(ctx context.Context, g Globals) context.Context {
	return context.WithValue(ctx, globalsKey{}, g)
}

// GlobalsFromContext returns the workflow globals attached to ctx, if any
func GlobalsFromContext(ctx context.Context) Globals {
	g, _ := ctx.Value(globalsKey{}).(Globals)
	return g
}
