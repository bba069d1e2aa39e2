package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultName     = "workflow"
	DefaultAddr     = ":8080"
	DefaultEndpoint = "End Point"
	DefaultLevel    = "info"
	DefaultFormat   = "console"
)

// WorkflowConfig represents the complete workflow configuration from YAML
type WorkflowConfig struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Variables   map[string]interface{} `yaml:"variables,omitempty"` // Global reusable variables
	Secrets     map[string]interface{} `yaml:"secrets,omitempty"`   // Sensitive values (API keys, tokens)
	Server      ServerConfig           `yaml:"server"`
	Log         LogConfig              `yaml:"log"`
	Steps       []StepConfig           `yaml:"steps"`
}

// ServerConfig configures the HTTP host
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	Endpoint string `yaml:"endpoint"` // text written by the terminal handler
}

// StepConfig represents one entry of the ordered step list.
// The first entry is the start step, the others are then steps.
type StepConfig struct {
	Type   string                 `yaml:"type"`   // Registered step type
	Config map[string]interface{} `yaml:"config"` // Step specific configuration
}

// Load reads, parses and validates a workflow configuration file.
// Environment overrides are applied after parsing.
func Load(path string, knownStepType func(string) bool) (*WorkflowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow config %s: %w", path, err)
	}

	cfg.ApplyEnv()

	if err := Validate(cfg, knownStepType); err != nil {
		return nil, fmt.Errorf("invalid workflow config %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes a YAML document and fills in defaults
func Parse(data []byte) (*WorkflowConfig, error) {
	var cfg WorkflowConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

// SetDefaults fills empty fields with their default values
func (c *WorkflowConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Endpoint == "" {
		c.Server.Endpoint = DefaultEndpoint
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultFormat
	}
}

// ApplyEnv overrides configuration values with environment variables
// WORKFLOW_ADDR and WORKFLOW_LOG_LEVEL
func (c *WorkflowConfig) ApplyEnv() {
	if addr := os.Getenv("WORKFLOW_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("WORKFLOW_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}
