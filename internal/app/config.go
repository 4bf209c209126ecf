package app

import (
	"errors"
	"fmt"

	"github.com/vk/phydrago/internal/output"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModelPath string // hcl file or directory

	// Steps and DT override the model's clock when positive.
	Steps int
	DT    float64

	// OutputPath and OutputFormat override the model's output block.
	OutputPath   string
	OutputFormat string

	// Graph, when set to "dot" or "mermaid", prints the execution plan
	// instead of running the model.
	Graph string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("ModelPath is a required configuration field and cannot be empty")
	}
	if cfg.Steps < 0 {
		return nil, fmt.Errorf("steps must not be negative, got %d", cfg.Steps)
	}
	if cfg.DT < 0 {
		return nil, fmt.Errorf("dt must not be negative, got %v", cfg.DT)
	}
	if cfg.OutputFormat != "" {
		if _, err := output.ParseFormat(cfg.OutputFormat); err != nil {
			return nil, err
		}
	}
	switch cfg.Graph {
	case "", "dot", "mermaid":
	default:
		return nil, fmt.Errorf("invalid graph format %q: must be 'dot' or 'mermaid'", cfg.Graph)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	return &cfg, nil
}
