package steps

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/simon020286/go-workflow/builder"
	"github.com/simon020286/go-workflow/models"
)

const (
	startMessage = "Starting workflow..."
	thenMessage  = "Then workflow..."
)

// StartStep opens a workflow
type StartStep struct {
	log bool
}

func (s *StartStep) Execute(ctx context.Context, rc models.RequestContext) error {
	return writeLine(ctx, rc, "start", startMessage, s.log)
}

// ThenStep marks a workflow continuation
type ThenStep struct {
	log bool
}

func (s *ThenStep) Execute(ctx context.Context, rc models.RequestContext) error {
	return writeLine(ctx, rc, "then", thenMessage, s.log)
}

// writeLine appends line and a newline to the response, then optionally
// reports the same line on the diagnostic logger
func writeLine(ctx context.Context, rc models.RequestContext, stepType, line string, log bool) error {
	if _, err := rc.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if log {
		zerolog.Ctx(ctx).Info().Str("step", stepType).Msg(line)
	}
	return nil
}

func init() {
	builder.RegisterStepType("start", func(cfg map[string]any) (models.StepFactory, error) {
		log, err := builder.BoolOption(cfg, "log", true)
		if err != nil {
			return nil, err
		}
		return func() models.Step {
			return &StartStep{log: log}
		}, nil
	})

	builder.RegisterStepType("then", func(cfg map[string]any) (models.StepFactory, error) {
		log, err := builder.BoolOption(cfg, "log", true)
		if err != nil {
			return nil, err
		}
		return func() models.Step {
			return &ThenStep{log: log}
		}, nil
	})
}
