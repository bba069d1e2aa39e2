package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/simon020286/go-workflow/models"
)

// Terminal is invoked after the last step completes successfully
type Terminal func(ctx context.Context, rc models.RequestContext) error

// WriteTerminal returns a Terminal that writes a fixed text
func WriteTerminal(text string) Terminal {
	return func(_ context.Context, rc models.RequestContext) error {
		_, err := rc.WriteString(text)
		return err
	}
}

// Executor walks a Registry once per request.
// It keeps no per-run state, so Run may be called concurrently.
type Executor struct {
	logger   zerolog.Logger
	eventBus *eventBus
}

// NewExecutor creates an executor logging to logger
func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{
		logger:   logger,
		eventBus: newEventBus(),
	}
}

// AddListener adds a listener to receive events from the executor
func (e *Executor) AddListener(listener models.EventListener) {
	e.eventBus.addListener(listener)
}

// Wait blocks until all emitted events have been delivered
func (e *Executor) Wait() {
	e.eventBus.Wait()
}

// Run executes every step of reg against rc in registration order, then
// terminal. The first failure stops the chain and is returned; steps
// after it and the terminal are not invoked.
func (e *Executor) Run(ctx context.Context, reg *Registry, rc models.RequestContext, terminal Terminal) error {
	if reg == nil {
		return errors.New("workflow registry is nil")
	}
	if rc == nil {
		return errors.New("request context is nil")
	}

	requestID := rc.RequestID()
	logger := e.logger.With().
		Str("workflow", reg.name).
		Str("request_id", requestID).
		Logger()

	ctx = logger.WithContext(ctx)
	ctx = models.WithGlobals(ctx, reg.globals)

	startTime := time.Now()
	e.eventBus.EmitWorkflowStarted(reg.name, requestID)

	for i, descriptor := range reg.steps {
		if err := ctx.Err(); err != nil {
			return e.fail(logger, reg.name, requestID, models.ErrExecution(reg.name, descriptor.Type, i, err))
		}

		step := descriptor.Factory()
		if step == nil {
			err := models.ErrExecution(reg.name, descriptor.Type, i, errors.New("factory returned a nil step"))
			return e.fail(logger, reg.name, requestID, err)
		}

		stepStart := time.Now()
		e.eventBus.EmitStepStarted(reg.name, requestID, descriptor.Type, i)

		if err := step.Execute(ctx, rc); err != nil {
			e.eventBus.EmitStepError(reg.name, requestID, descriptor.Type, i, err)
			return e.fail(logger, reg.name, requestID, models.ErrExecution(reg.name, descriptor.Type, i, err))
		}

		e.eventBus.EmitStepCompleted(reg.name, requestID, descriptor.Type, i, time.Since(stepStart))
	}

	if terminal != nil {
		if err := ctx.Err(); err != nil {
			return e.fail(logger, reg.name, requestID, models.ErrExecution(reg.name, "terminal", len(reg.steps), err))
		}
		if err := terminal(ctx, rc); err != nil {
			return e.fail(logger, reg.name, requestID, fmt.Errorf("workflow '%s': terminal handler failed: %w", reg.name, err))
		}
	}

	duration := time.Since(startTime)
	e.eventBus.EmitWorkflowCompleted(reg.name, requestID, duration)
	logger.Debug().Dur("duration", duration).Int("steps", len(reg.steps)).Msg("workflow completed")

	return nil
}

func (e *Executor) fail(logger zerolog.Logger, workflow, requestID string, err error) error {
	e.eventBus.EmitWorkflowError(workflow, requestID, err)
	logger.Error().Err(err).Msg("workflow aborted")
	return err
}
