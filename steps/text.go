package steps

import (
	"context"
	"fmt"

	"github.com/simon020286/go-workflow/builder"
	"github.com/simon020286/go-workflow/config"
	"github.com/simon020286/go-workflow/models"
)

// TextStep writes a configured line, static or resolved per request
type TextStep struct {
	text config.ValueSpec
	log  bool
}

func (s *TextStep) Execute(ctx context.Context, rc models.RequestContext) error {
	resolved, err := s.text.Resolve(config.NewScope(ctx, rc))
	if err != nil {
		return models.ErrInterpolate("text", s.text, err)
	}
	// undefined and null write nothing, like the js step
	if resolved == nil {
		return nil
	}
	return writeLine(ctx, rc, "text", fmt.Sprintf("%v", resolved), s.log)
}

func init() {
	builder.RegisterStepType("text", func(cfg map[string]any) (models.StepFactory, error) {
		text, ok := cfg["text"]
		if !ok {
			return nil, models.ErrMissingConfig("text")
		}
		log, err := builder.BoolOption(cfg, "log", true)
		if err != nil {
			return nil, err
		}

		textSpec := config.ParseValue(text)

		return func() models.Step {
			return &TextStep{text: textSpec, log: log}
		}, nil
	})
}
