package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/simon020286/go-workflow/builder"
	"github.com/simon020286/go-workflow/config"
	"github.com/simon020286/go-workflow/models"
)

// ErrGuardRejected is returned when a guard condition evaluates to false
var ErrGuardRejected = errors.New("guard condition not met")

// GuardStep stops the chain unless its condition holds.
// It writes nothing.
type GuardStep struct {
	condition config.ValueSpec
	message   string
	log       bool
}

func (s *GuardStep) Execute(ctx context.Context, rc models.RequestContext) error {
	condResolved, err := s.condition.Resolve(config.NewScope(ctx, rc))
	if err != nil {
		return models.ErrInterpolate("condition", s.condition, err)
	}

	condition, ok := condResolved.(bool)
	if !ok {
		return fmt.Errorf("condition must be a boolean, got %T", condResolved)
	}

	if !condition {
		if s.log {
			zerolog.Ctx(ctx).Info().Str("step", "guard").Msg(s.message)
		}
		return fmt.Errorf("%w: %s", ErrGuardRejected, s.message)
	}
	return nil
}

func init() {
	builder.RegisterStepType("guard", func(cfg map[string]any) (models.StepFactory, error) {
		condition, ok := cfg["condition"]
		if !ok {
			return nil, models.ErrMissingConfig("condition")
		}
		log, err := builder.BoolOption(cfg, "log", true)
		if err != nil {
			return nil, err
		}

		message, _ := cfg["message"].(string)
		if message == "" {
			message = "request rejected"
		}

		conditionSpec := config.ParseValue(condition)
		if v, ok := conditionSpec.GetStaticValue(); ok {
			if _, isBool := v.(bool); !isBool {
				return nil, fmt.Errorf("condition must be a boolean, got %T", v)
			}
		}

		return func() models.Step {
			return &GuardStep{condition: conditionSpec, message: message, log: log}
		}, nil
	})
}
