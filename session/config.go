package session

import (
	"github.com/caarlos0/env/v11"

	"github.com/goort/goort/status"
)

// Config holds the environment-driven defaults for an Env.
type Config struct {
	// Engine is the engine configuration string, "engine[:options]".
	Engine string `env:"GOORT_ENGINE" envDefault:"go"`

	// LogVerbosity is the default log verbosity attached to runs that do
	// not set their own.
	LogVerbosity int `env:"GOORT_LOG_VERBOSITY" envDefault:"0"`
}

// ConfigFromEnv parses the configuration from the process environment.
func ConfigFromEnv() (Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return Config{}, status.WithCode(status.InvalidArgument, err)
	}
	return config, nil
}
