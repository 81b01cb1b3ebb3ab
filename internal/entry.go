// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/cardlinks/internal/export"
	"github.com/starford/cardlinks/internal/scenario"
)

// Run loads and runs every configured scenario, renders the reports and, in
// watch mode, re-runs changed files until ctx is cancelled or a signal
// arrives. It returns scenario.ErrFailed when a one-shot run has failures.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		out:    os.Stdout,
		logOut: os.Stderr,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.Int("scenario_files", len(cfg.Scenario.Paths)),
		slog.Bool("watch", cfg.Scenario.Watch),
		slog.String("output", cfg.App.Output),
		slog.String("sqlite_path", cfg.Export.SQLitePath),
		slog.String("log_level", cfg.App.LogLevel.String()))

	scenarios := append([]*scenario.Scenario(nil), app.scenarios...)
	for _, p := range cfg.Scenario.Paths {
		s, err := scenario.Load(p)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, s)
	}
	if len(scenarios) == 0 {
		return errors.New("no scenarios to run")
	}

	var db *export.DB
	if cfg.Export.Enabled() {
		var err error
		db, err = export.Open(cfg.Export.SQLitePath)
		if err != nil {
			return fmt.Errorf("init export: %w", err)
		}
		defer db.Close()
	}

	r := &runner{app: app, db: db, logger: logger, sums: make(map[string]string)}

	reports, err := r.runAll(ctx, scenarios)
	if err != nil {
		return err
	}
	if err := r.publish(ctx, reports...); err != nil {
		return err
	}

	if !cfg.Scenario.Watch {
		for _, rep := range reports {
			if !rep.Passed() {
				return scenario.ErrFailed
			}
		}
		return nil
	}

	return r.watch(ctx, cfg.Scenario.Paths)
}

type runner struct {
	app    *application
	db     *export.DB
	logger *slog.Logger

	// Serializes rendering and export between watch callbacks and the initial run.
	mu   sync.Mutex
	sums map[string]string // path -> checksum of the last published run
}

// runAll runs scenarios concurrently. Each scenario gets its own service, so
// they share nothing but the logger. Reports keep the input order.
func (r *runner) runAll(ctx context.Context, scenarios []*scenario.Scenario) ([]*scenario.Report, error) {
	reports := make([]*scenario.Report, len(scenarios))

	g, gCtx := errgroup.WithContext(ctx)
	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			rep, err := scenario.Run(gCtx, s, r.logger)
			if err != nil {
				return fmt.Errorf("run %s: %w", s.Name, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *runner) publish(ctx context.Context, reports ...*scenario.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rep := range reports {
		if rep.Path != "" {
			r.sums[rep.Path] = rep.Checksum
		}
	}
	if err := scenario.Render(r.app.out, r.app.config.App.Output, reports...); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if r.db == nil {
		return nil
	}
	for _, rep := range reports {
		if err := r.db.WriteSnapshot(ctx, runKey(rep), rep.Failures, rep.Final); err != nil {
			return err
		}
		r.logger.Debug("snapshot exported", slog.String("run", runKey(rep)))
	}
	return nil
}

func (r *runner) rerun(ctx context.Context, path string) {
	s, err := scenario.Load(path)
	if err != nil {
		r.logger.Warn("reload failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if r.unchanged(s) {
		r.logger.Debug("content unchanged, skipping", slog.String("path", path))
		return
	}
	rep, err := scenario.Run(ctx, s, r.logger)
	if err != nil {
		r.logger.Warn("rerun failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if err := r.publish(ctx, rep); err != nil {
		r.logger.Error("publish failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (r *runner) unchanged(s *scenario.Scenario) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sums[s.Path] == s.Checksum
}

func (r *runner) watch(ctx context.Context, paths []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scenario.Watch(gCtx, paths, r.logger, func(path string) {
			r.rerun(gCtx, path)
		})
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			r.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
			r.logger.Info("Context cancelled, stopping watcher")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		r.logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	r.logger.Info("Watcher stopped")
	return nil
}

func runKey(rep *scenario.Report) string {
	if rep.Path != "" {
		return rep.Path
	}
	return rep.Name
}
