package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ModelPath is a model file or a directory of model files.
	ModelPath string

	// OutPath, when set, receives the optimized model.
	OutPath string

	LogFormat string
	LogLevel  string

	// CollapseCascadedCasts enables the lossy cascaded-cast maintenance
	// pass.
	CollapseCascadedCasts bool
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("ModelPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
