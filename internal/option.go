package internal

import (
	"io"

	"github.com/starford/cardlinks/internal/scenario"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	out       io.Writer
	logOut    io.Writer
	scenarios []*scenario.Scenario
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets where reports are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithLogOutput sets where structured logs are written. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}

// WithScenarios adds already parsed scenarios to run ahead of the configured files.
// They are not watched.
func WithScenarios(s ...*scenario.Scenario) Option {
	return func(a *application) {
		a.scenarios = append(a.scenarios, s...)
	}
}
