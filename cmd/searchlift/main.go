// Package main provides the searchlift binary entry point.
// SearchLift hosts a versioned registry of search model configurations with
// lifecycle tracking, metadata schemas, and change notifications over NATS.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/searchlift/searchlift/config"
	"github.com/searchlift/searchlift/event"
	"github.com/searchlift/searchlift/metadata"
	"github.com/searchlift/searchlift/model"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "searchlift"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "searchlift",
		Short: "Versioned registry for search models",
		Long: `SearchLift hosts a versioned registry of search model configurations.

It provides:
- Entry storage with name, version, tag, and dependency indexing
- A draft/active/deprecated/archived version lifecycle
- Schema-validated metadata records with hot-reloaded schema files
- Registry change events over NATS JetStream`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(versionCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(schemaCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default user config if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger("info")
			return config.NewLoader(logger).EnsureUserConfig()
		},
	})
	return cmd
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Work with metadata schema files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "lint <file>...",
		Short: "Parse and compile schema files, reporting errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, path := range args {
				schemas, err := metadata.LoadSchemaFile(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					failed = true
					continue
				}
				fmt.Printf("%s: %d schema(s) ok\n", path, len(schemas))
			}
			if failed {
				return fmt.Errorf("schema lint failed")
			}
			return nil
		},
	})
	return cmd
}

func run(logLevelFlag string) error {
	bootLogger := newLogger("info")

	cfg, err := config.NewLoader(bootLogger).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The flag wins over the config file.
	level := cfg.Log.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logger := newLogger(level)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var publisher event.Publisher
	if cfg.Events.Enabled {
		np, err := event.NewNATSPublisher(ctx, cfg.Events.URL, cfg.Events.SubjectPrefix, logger)
		if err != nil {
			return fmt.Errorf("connect event publisher: %w", err)
		}
		publisher = np
		logger.Info("Event publishing enabled", "url", cfg.Events.URL)
	}

	facade := model.NewFacade(publisher, logger)

	if cfg.Schemas.Dir != "" {
		if cfg.Schemas.Watch {
			watcher, err := metadata.NewSchemaWatcher(cfg.Schemas.Dir, facade.Metadata(), cfg.Schemas.Debounce, logger)
			if err != nil {
				return fmt.Errorf("create schema watcher: %w", err)
			}
			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start schema watcher: %w", err)
			}
			defer func() { _ = watcher.Stop() }()
		} else {
			count, err := facade.Metadata().LoadDir(cfg.Schemas.Dir)
			if err != nil {
				return fmt.Errorf("load schemas: %w", err)
			}
			logger.Info("Schemas loaded", "dir", cfg.Schemas.Dir, "schemas", count)
		}
	}

	logger.Info("SearchLift ready", "version", Version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", "signal", sig.String())
	return nil
}

func newLogger(levelName string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
