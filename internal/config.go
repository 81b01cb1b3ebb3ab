package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cardlinks/internal/scenario"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Scenario ScenarioConfig    `yaml:"scenario"`
	Export   ExportConfig      `yaml:"export"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Scenario.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Output   string     `yaml:"output"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Output == "" {
		c.Output = scenario.FormatText
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Output, validation.In(scenario.FormatText, scenario.FormatJSON, scenario.FormatYAML)),
	)
}

// ScenarioConfig lists the scenario files to run.
//
// With Watch set the files are re-run whenever they change on disk, until
// the process is interrupted.
type ScenarioConfig struct {
	Paths []string `yaml:"paths"`
	Watch bool     `yaml:"watch"`
}

// Validate validates the scenario configuration.
func (c *ScenarioConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Paths, validation.When(c.Watch, validation.Required), validation.Each(validation.Required)),
	)
}

// ExportConfig holds the optional SQLite export target. Empty disables export.
type ExportConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Enabled reports whether snapshots should be exported.
func (c *ExportConfig) Enabled() bool {
	return c.SQLitePath != ""
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
			Output:   scenario.FormatText,
		},
	}
}
