package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/cardlinks/internal"
	"github.com/starford/cardlinks/internal/scenario"
	pkgconfig "github.com/starford/cardlinks/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.IsSet("output") {
		cfg.App.Output = cmd.String("output")
	}
	return cfg, nil
}

func runScenarios(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Args().Present() {
		cfg.Scenario.Paths = cmd.Args().Slice()
	}
	if cmd.IsSet("watch") {
		cfg.Scenario.Watch = cmd.Bool("watch")
	}
	if cmd.IsSet("export") {
		cfg.Export.SQLitePath = cmd.String("export")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runDemo(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Scenario = internal.ScenarioConfig{}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithScenarios(scenario.Demo()),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Report format: text, json or yaml",
		Value:   scenario.FormatText,
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "cardlinks",
		Usage: "Link credit cards into chains and replay link/delink/swap scenarios",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Run scenario files",
				ArgsUsage: "[file.yaml ...]",
				Action:    runScenarios,
				Flags: []cli.Flag{
					outputFlag(),
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Re-run scenario files when they change",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Write final snapshots to this SQLite file",
					},
				},
			},
			{
				Name:   "demo",
				Usage:  "Run the built-in four card walkthrough",
				Action: runDemo,
				Flags:  []cli.Flag{outputFlag()},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
