package steps

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/simon020286/go-workflow/builder"
	"github.com/simon020286/go-workflow/config"
	"github.com/simon020286/go-workflow/models"
)

// DelayStep pauses the chain for a configured duration
type DelayStep struct {
	delay config.ValueSpec
	log   bool
}

func (s *DelayStep) Execute(ctx context.Context, rc models.RequestContext) error {
	delayResolved, err := s.delay.Resolve(config.NewScope(ctx, rc))
	if err != nil {
		return models.ErrInterpolate("ms", s.delay, err)
	}

	delayMS, err := toMillis(delayResolved)
	if err != nil {
		return err
	}

	timer := time.NewTimer(time.Duration(delayMS) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
		if s.log {
			zerolog.Ctx(ctx).Debug().Str("step", "delay").Int64("ms", delayMS).Msg("delay completed")
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("delay interrupted: %w", ctx.Err())
	}
}

// maxDelayMS is the longest delay a time.Duration can hold
const maxDelayMS = math.MaxInt64 / int64(time.Millisecond)

func toMillis(v any) (int64, error) {
	var ms int64
	switch n := v.(type) {
	case int:
		ms = int64(n)
	case int64:
		ms = n
	case float64:
		if n < 0 || n > float64(maxDelayMS) {
			return 0, fmt.Errorf("delay must be between 0 and %d ms, got %v", maxDelayMS, n)
		}
		ms = int64(n)
	default:
		return 0, fmt.Errorf("delay must be a number, got %T", v)
	}

	if ms < 0 || ms > maxDelayMS {
		return 0, fmt.Errorf("delay must be between 0 and %d ms, got %d", maxDelayMS, ms)
	}
	return ms, nil
}

func init() {
	builder.RegisterStepType("delay", func(cfg map[string]any) (models.StepFactory, error) {
		ms, ok := cfg["ms"]
		if !ok {
			return nil, models.ErrMissingConfig("ms")
		}
		log, err := builder.BoolOption(cfg, "log", true)
		if err != nil {
			return nil, err
		}

		delaySpec := config.ParseValue(ms)
		if v, ok := delaySpec.GetStaticValue(); ok {
			if _, err := toMillis(v); err != nil {
				return nil, err
			}
		}

		return func() models.Step {
			return &DelayStep{delay: delaySpec, log: log}
		}, nil
	})
}
