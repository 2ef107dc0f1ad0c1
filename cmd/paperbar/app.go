package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/paperbar/internal/config"
	"github.com/ShayCichocki/paperbar/internal/decompose"
	"github.com/ShayCichocki/paperbar/internal/llm"
	"github.com/ShayCichocki/paperbar/internal/logging"
	"github.com/ShayCichocki/paperbar/internal/store"
	"github.com/ShayCichocki/paperbar/internal/tracker"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

// newGenerator builds the text generator used by decompose.
var newGenerator = llm.New

// app bundles what a command needs once configuration is loaded.
type app struct {
	cfg        *config.Config
	store      store.Store
	logger     *zap.Logger
	papers     *tracker.Papers
	milestones *tracker.Milestones
	tasks      *tracker.Tasks
	out        io.Writer
	errOut     io.Writer
	today      models.Date
}

// loadConfig loads configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.Storage.DataDir = flagDataDir
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openApp loads configuration, builds the logger and opens the store.
// Callers must Close the returned app.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	s, err := store.Open(cfg.Storage.Backend, cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", s.Path()),
	)

	return &app{
		cfg:        cfg,
		store:      s,
		logger:     logger,
		papers:     tracker.NewPapers(s),
		milestones: tracker.NewMilestones(s),
		tasks:      tracker.NewTasks(s),
		out:        cmd.OutOrStdout(),
		errOut:     cmd.ErrOrStderr(),
		today:      clock(),
	}, nil
}

// Close releases the store and flushes the logger.
func (a *app) Close() error {
	_ = logging.Sync(a.logger)
	return a.store.Close()
}

// findPaper looks a paper up by name.
func (a *app) findPaper(name string) (*models.Paper, error) {
	paper, err := a.papers.MustGetByName(name)
	if errors.Is(err, tracker.ErrPaperNotFound) {
		return nil, fmt.Errorf("paper %q not found", name)
	}
	return paper, err
}

// decomposer builds a Decomposer over the app's store. The generator is
// built on the first prompt, so a paper with nothing to decompose needs no
// credentials.
func (a *app) decomposer() *decompose.Decomposer {
	gen := llm.NewLazy(func() (llm.Generator, error) {
		return newGenerator(a.cfg, a.logger)
	})
	return decompose.New(
		decompose.Config{DefaultTaskHours: a.cfg.Defaults.TaskHours},
		gen,
		a.store,
		decompose.WithLogger(a.logger),
		decompose.WithClock(func() models.Date { return a.today }),
	)
}

// userMessage turns an error into the line shown after the ✗ marker.
func userMessage(err error) string {
	switch {
	case errors.Is(err, config.ErrNoAPIKey):
		return fmt.Sprintf("%v (set ANTHROPIC_API_KEY or OPENAI_API_KEY, or run 'paperbar config anthropic.api_key KEY')", err)
	case errors.Is(err, tracker.ErrAmbiguousRef):
		return fmt.Sprintf("%v; use more characters of the id", err)
	}
	return err.Error()
}
