// Package workflow runs an ordered chain of steps once per request.
//
// A Registry is assembled once at startup with the fluent Builder:
//
//	reg, err := workflow.NewBuilder("hello").
//		Start("start").
//		Then("then").
//		End()
//
// and then shared by every request through Executor.Run. Each step is
// constructed fresh for every request and executed strictly in
// registration order; the first failing step aborts the chain.
package workflow

import (
	"fmt"
	"maps"

	"github.com/simon020286/go-workflow/builder"
	"github.com/simon020286/go-workflow/models"
	_ "github.com/simon020286/go-workflow/steps"
)

// StepDescriptor is a registered step: its identity and the factory
// producing a fresh instance for each request
type StepDescriptor struct {
	Type    string
	Factory models.StepFactory
}

// Registry is the frozen, ordered list of steps of one workflow.
// It is read-only and safe to share between concurrent runs.
type Registry struct {
	name    string
	steps   []StepDescriptor
	globals models.Globals
}

// Name returns the workflow name
func (r *Registry) Name() string {
	return r.name
}

// Len returns the number of steps
func (r *Registry) Len() int {
	return len(r.steps)
}

// Steps returns a copy of the step descriptors in execution order
func (r *Registry) Steps() []StepDescriptor {
	steps := make([]StepDescriptor, len(r.steps))
	copy(steps, r.steps)
	return steps
}

// Globals returns the workflow variables and secrets
func (r *Registry) Globals() models.Globals {
	return r.globals
}

type builderState int

const (
	stateOpen builderState = iota
	stateStarted
	stateEnded
)

// Builder assembles a Registry with a fluent API.
// The first error is kept and reported by End.
type Builder struct {
	name      string
	steps     []StepDescriptor
	variables map[string]any
	secrets   map[string]any
	state     builderState
	err       error
}

// NewBuilder creates a builder for the named workflow
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// WithVariables sets the global variables visible to dynamic values
func (b *Builder) WithVariables(variables map[string]any) *Builder {
	b.variables = variables
	return b
}

// WithSecrets sets the global secrets visible to dynamic values
func (b *Builder) WithSecrets(secrets map[string]any) *Builder {
	b.secrets = secrets
	return b
}

// Start registers the first step by its registered type
func (b *Builder) Start(stepType string) *Builder {
	return b.StartWith(stepType, nil)
}

// StartWith registers the first step with a configuration
func (b *Builder) StartWith(stepType string, cfg map[string]any) *Builder {
	if b.begin("start") {
		b.addType(stepType, cfg)
	}
	return b
}

// StartStep registers the first step with an explicit factory
func (b *Builder) StartStep(identity string, factory models.StepFactory) *Builder {
	if b.begin("start") {
		b.addFactory(identity, factory)
	}
	return b
}

// Then appends a step by its registered type
func (b *Builder) Then(stepType string) *Builder {
	return b.ThenWith(stepType, nil)
}

// ThenWith appends a step with a configuration
func (b *Builder) ThenWith(stepType string, cfg map[string]any) *Builder {
	if b.begin("then") {
		b.addType(stepType, cfg)
	}
	return b
}

// ThenStep appends a step with an explicit factory
func (b *Builder) ThenStep(identity string, factory models.StepFactory) *Builder {
	if b.begin("then") {
		b.addFactory(identity, factory)
	}
	return b
}

// End freezes the step list and returns the Registry.
// No builder call is accepted afterwards.
func (b *Builder) End() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	switch b.state {
	case stateOpen:
		b.err = models.ErrBuilderSequence("end", "start was never called")
		return nil, b.err
	case stateEnded:
		return nil, models.ErrBuilderSequence("end", "workflow already ended")
	}

	b.state = stateEnded

	steps := make([]StepDescriptor, len(b.steps))
	copy(steps, b.steps)

	return &Registry{
		name:  b.name,
		steps: steps,
		globals: models.Globals{
			Variables: maps.Clone(b.variables),
			Secrets:   maps.Clone(b.secrets),
		},
	}, nil
}

// begin checks that op is allowed in the current state
func (b *Builder) begin(op string) bool {
	if b.err != nil {
		return false
	}

	switch b.state {
	case stateEnded:
		b.err = models.ErrBuilderSequence(op, "workflow already ended")
	case stateOpen:
		if op != "start" {
			b.err = models.ErrBuilderSequence(op, "start must be called first")
		}
	case stateStarted:
		if op == "start" {
			b.err = models.ErrBuilderSequence(op, "start already called")
		}
	}

	if b.err != nil {
		return false
	}
	b.state = stateStarted
	return true
}

func (b *Builder) addType(stepType string, cfg map[string]any) {
	factory, err := builder.Prepare(stepType, cfg)
	if err != nil {
		b.err = fmt.Errorf("step %d: %w", len(b.steps), err)
		return
	}
	b.steps = append(b.steps, StepDescriptor{Type: stepType, Factory: factory})
}

func (b *Builder) addFactory(identity string, factory models.StepFactory) {
	if identity == "" {
		b.err = fmt.Errorf("step %d: identity cannot be empty", len(b.steps))
		return
	}
	if factory == nil {
		b.err = fmt.Errorf("step %d (%s): factory cannot be nil", len(b.steps), identity)
		return
	}
	b.steps = append(b.steps, StepDescriptor{Type: identity, Factory: factory})
}
