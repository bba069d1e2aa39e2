package models

import "context"

// Step represents one unit of work in a workflow chain.
// Execute appends its output to the request context and returns once it is
// done; a non-nil error aborts the rest of the chain.
type Step interface {
	Execute(ctx context.Context, rc RequestContext) error
}

// StepFactory creates a fresh Step instance.
// It is invoked once per step per request, instances are never reused.
type StepFactory func() Step

// StepFunc is an adapter to use plain functions as a Step
type StepFunc func(ctx context.Context, rc RequestContext) error

func (f StepFunc) Execute(ctx context.Context, rc RequestContext) error {
	return f(ctx, rc)
}
