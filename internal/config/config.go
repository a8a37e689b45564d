package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	LogLevel string `envconfig:"PLANNER_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error dpanic panic fatal"`
	Results  resultsConfig
	Sweep    sweepConfig
}

type resultsConfig struct {
	// Dir holds the accuracy and timing CSV files, one sub directory per protocol.
	Dir     string `envconfig:"PLANNER_RESULTS_DIR" default:"results" validate:"required"`
	LogsDir string `envconfig:"PLANNER_LOGS_DIR" default:"logs" validate:"required"`
}

type sweepConfig struct {
	Workers int `envconfig:"PLANNER_SWEEP_WORKERS" default:"4" validate:"gte=1,lte=64"`
}

// New reads the configuration from the environment once and returns the same instance afterwards.
func New() (*Config, error) {
	if singleConfig == nil {
		cfg := new(Config)
		if err := envconfig.Process("", cfg); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		singleConfig = cfg
	}
	return singleConfig, nil
}

// NewDefault returns the configuration built from defaults only.
func NewDefault() *Config {
	return &Config{
		LogLevel: "info",
		Results: resultsConfig{
			Dir:     "results",
			LogsDir: "logs",
		},
		Sweep: sweepConfig{
			Workers: 4,
		},
	}
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
