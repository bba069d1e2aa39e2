package workflow

import (
	"github.com/simon020286/go-workflow/config"
)

// BuildFromConfig builds a registry from a configuration.
// The first configured step is the start step, the others follow in order.
func BuildFromConfig(cfg *config.WorkflowConfig) (*Registry, error) {
	b := NewBuilder(cfg.Name).
		WithVariables(cfg.Variables).
		WithSecrets(cfg.Secrets)

	for i, stepConfig := range cfg.Steps {
		if i == 0 {
			b.StartWith(stepConfig.Type, stepConfig.Config)
			continue
		}
		b.ThenWith(stepConfig.Type, stepConfig.Config)
	}

	return b.End()
}
