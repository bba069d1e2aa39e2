package builder

import (
	"sort"
	"sync"

	"github.com/simon020286/go-workflow/models"
)

// PrepareFunc turns a step configuration into a StepFactory.
// It runs once at startup, so configuration errors are reported before
// the first request; the returned factory runs once per request.
type PrepareFunc func(config map[string]any) (models.StepFactory, error)

var (
	// registry contains all registered prepare functions by step type
	registry = make(map[string]PrepareFunc)
	mu       sync.RWMutex
)

// RegisterStepType registers a step type.
// This function is called by init() in step packages
func RegisterStepType(stepType string, prepare PrepareFunc) {
	mu.Lock()
	defer mu.Unlock()
	registry[stepType] = prepare
}

// GetStepType returns the prepare function of a step type
func GetStepType(stepType string) (PrepareFunc, error) {
	mu.RLock()
	defer mu.RUnlock()

	prepare, exists := registry[stepType]
	if !exists {
		return nil, models.ErrUnknownStepType(stepType)
	}
	return prepare, nil
}

// IsRegistered reports whether a step type is known
func IsRegistered(stepType string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, exists := registry[stepType]
	return exists
}

// ListStepTypes returns all registered step types, sorted
func ListStepTypes() []string {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
