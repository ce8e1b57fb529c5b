package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/c360studio/openspec/config"
	"github.com/c360studio/openspec/storage"
	"github.com/c360studio/openspec/workflow"
)

// app bundles the loaded configuration with the wired-up lifecycle.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	manager   *workflow.Manager
	store     *storage.Store
	lifecycle *workflow.Lifecycle
}

// newApp loads layered configuration and wires the change manager,
// spec store, and lifecycle. The log-level flag overrides the config.
func newApp(logLevel string) (*app, error) {
	bootstrap := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.NewLoader(bootstrap).Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)}))
	slog.SetDefault(logger)

	if cfg.Project.Root == "" {
		return nil, fmt.Errorf("could not determine workspace root")
	}

	manager := workflow.NewManagerWithRoot(cfg.Project.Root, cfg.Project.Dir)
	store := storage.NewStore(manager.SpecsPath())

	return &app{
		cfg:       cfg,
		logger:    logger,
		manager:   manager,
		store:     store,
		lifecycle: workflow.NewLifecycle(manager, store, logger),
	}, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
