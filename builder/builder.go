package builder

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/simon020286/go-workflow/models"
)

// Prepare resolves a step type and prepares its factory from configuration
func Prepare(stepType string, stepConfig map[string]any) (models.StepFactory, error) {
	prepare, err := GetStepType(stepType)
	if err != nil {
		return nil, err
	}

	if stepConfig == nil {
		stepConfig = make(map[string]any)
	}

	factory, err := prepare(stepConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare step '%s': %w", stepType, err)
	}
	if factory == nil {
		return nil, fmt.Errorf("step type '%s' returned a nil factory", stepType)
	}
	return factory, nil
}

// GenerateRequestID generates a unique ID for a request
func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// BoolOption reads an optional boolean from a step configuration
func BoolOption(cfg map[string]any, key string, def bool) (bool, error) {
	raw, ok := cfg[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("'%s' must be a boolean, got %T", key, raw)
	}
	return v, nil
}
