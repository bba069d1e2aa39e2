package steps

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/simon020286/go-workflow/builder"
	"github.com/simon020286/go-workflow/config"
	"github.com/simon020286/go-workflow/models"
)

// FileStep copies the content of a file into the response
type FileStep struct {
	path config.ValueSpec
	log  bool
}

func (s *FileStep) Execute(ctx context.Context, rc models.RequestContext) error {
	pathResolved, err := s.path.Resolve(config.NewScope(ctx, rc))
	if err != nil {
		return models.ErrInterpolate("path", s.path, err)
	}
	filePath := fmt.Sprintf("%v", pathResolved)

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if _, err := rc.WriteString(string(content)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if s.log {
		zerolog.Ctx(ctx).Info().Str("step", "file").Str("path", filePath).Int("bytes", len(content)).Msg("file written")
	}
	return nil
}

func init() {
	builder.RegisterStepType("file", func(cfg map[string]any) (models.StepFactory, error) {
		path, ok := cfg["path"]
		if !ok {
			return nil, models.ErrMissingConfig("path")
		}
		log, err := builder.BoolOption(cfg, "log", true)
		if err != nil {
			return nil, err
		}

		pathSpec := config.ParseValue(path)

		return func() models.Step {
			return &FileStep{path: pathSpec, log: log}
		}, nil
	})
}
