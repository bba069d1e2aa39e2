package steps

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
	"github.com/simon020286/go-workflow/builder"
	"github.com/simon020286/go-workflow/config"
	"github.com/simon020286/go-workflow/models"
)

// JsStep runs a JavaScript body and writes its result.
// Each execution gets its own runtime; goja runtimes are not goroutine safe.
type JsStep struct {
	program *goja.Program
	log     bool
}

func (s *JsStep) Execute(ctx context.Context, rc models.RequestContext) error {
	scope := config.NewScope(ctx, rc)
	runtime, err := scope.NewRuntime()
	if err != nil {
		return fmt.Errorf("failed to prepare JavaScript runtime: %w", err)
	}

	stop := scope.Watch(runtime)
	defer stop()

	result, err := runtime.RunProgram(s.program)
	if err != nil {
		if ctxErr := scope.Interrupted(err); ctxErr != nil {
			return fmt.Errorf("JavaScript execution interrupted: %w", ctxErr)
		}
		return fmt.Errorf("JavaScript execution error: %w", err)
	}

	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil
	}

	return writeLine(ctx, rc, "js", result.String(), s.log)
}

func init() {
	builder.RegisterStepType("js", func(cfg map[string]any) (models.StepFactory, error) {
		code, ok := cfg["code"].(string)
		if !ok {
			return nil, models.ErrMissingConfig("code")
		}
		log, err := builder.BoolOption(cfg, "log", true)
		if err != nil {
			return nil, err
		}

		// The user can write: return "text";
		// Compiled once, a Program can be shared by many runtimes
		program, err := goja.Compile("js", "(function() {\n"+code+"\n})()", false)
		if err != nil {
			return nil, fmt.Errorf("invalid 'code' in js step: %w", err)
		}

		return func() models.Step {
			return &JsStep{program: program, log: log}
		}, nil
	})
}
