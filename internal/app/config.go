package app

import (
	"errors"

	"github.com/vk/fishgrid/internal/toolrun"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// JobPaths are .hcl files or directories searched recursively.
	JobPaths []string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int

	// Runner executes tool blocks; nil uses the docker/local exec runner.
	Runner toolrun.Runner
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.JobPaths) == 0 {
		return nil, errors.New("at least one job path is required")
	}
	if cfg.WorkerCount < 0 {
		return nil, errors.New("worker count must not be negative")
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 1
	}
	return &cfg, nil
}
