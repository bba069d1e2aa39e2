package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Validate checks a workflow configuration.
// knownStepType may be nil, in which case step types are not checked.
func Validate(cfg *WorkflowConfig, knownStepType func(string) bool) error {
	if cfg == nil {
		return fmt.Errorf("workflow config is nil")
	}

	if len(cfg.Steps) == 0 {
		return fmt.Errorf("workflow %s must have at least one step", cfg.Name)
	}

	for i, step := range cfg.Steps {
		if err := validateStep(step, knownStepType); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}

	if err := validateLog(cfg.Log); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}

	return nil
}

// validateStep validates a single step entry
func validateStep(step StepConfig, knownStepType func(string) bool) error {
	if step.Type == "" {
		return fmt.Errorf("type is required")
	}

	if knownStepType != nil && !knownStepType(step.Type) {
		return fmt.Errorf("unknown step type '%s'", step.Type)
	}

	if v, ok := step.Config["log"]; ok {
		if _, isBool := v.(bool); !isBool {
			return fmt.Errorf("'log' must be a boolean, got %T", v)
		}
	}

	return nil
}

func validateLog(lc LogConfig) error {
	if lc.Level != "" {
		if _, err := zerolog.ParseLevel(lc.Level); err != nil {
			return err
		}
	}

	switch lc.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported format '%s'", lc.Format)
	}

	return nil
}
