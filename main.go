package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dselans/gzmigrate/config"
	"github.com/dselans/gzmigrate/internal/status"
	"github.com/dselans/gzmigrate/internal/trace"
	"github.com/dselans/gzmigrate/migrator"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Println("ERROR: ", err)
		os.Exit(1)
	}

	if cfg.CLI.Debug {
		logrus.Info("debug mode enabled")
		logrus.SetLevel(logrus.DebugLevel)
	}

	displayConfig(cfg)

	if !cfg.CLI.Migrate {
		logrus.Info("--migrate not set, exiting")
		return
	}

	closer, err := trace.Init("gzmigrate", !cfg.CLI.DryRun)
	if err != nil {
		logrus.Errorf("unable to init tracer: %s", err)
		os.Exit(1)
	}
	defer closer.Close()

	statusServer := status.New(":8080")
	go func() {
		if err := statusServer.ListenAndServe(); err != nil {
			logrus.Errorf("status server error: %s", err)
		}
	}()

	shutdownCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m, err := migrator.New(cfg)
	if err != nil {
		logrus.Errorf("unable to create migrator: %s", err)
		os.Exit(1)
	}
	m.SetStatusServer(statusServer)

	if err := m.Run(shutdownCtx); err != nil {
		logrus.Errorf("error during migrator run: %s", err)

		shutdownStatusServer(statusServer)
		os.Exit(1)
	}

	shutdownStatusServer(statusServer)
}

func shutdownStatusServer(s *status.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logrus.Errorf("error shutting down status server: %s", err)
	}
}

func displayConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	logrus.Info("gzmigrate settings:")
	logrus.Info("  [CLI]")
	logrus.Infof("  version: %s", config.VERSION)
	logrus.Infof("  debug: %v", cfg.CLI.Debug)
	logrus.Infof("  config file: %s", cfg.CLI.ConfigFile)
	logrus.Infof("  report output: %s", cfg.CLI.ReportOutput)
	logrus.Infof("  report interval: %s", cfg.CLI.ReportInterval)
	logrus.Infof("  dry run: %v", cfg.CLI.DryRun)
	logrus.Infof("  migrate: %v", cfg.CLI.Migrate)
	logrus.Infof("  disable resume: %v", cfg.CLI.DisableResume)
	logrus.Infof("  color enabled: %v", cfg.CLI.ColorEnabled())
	logrus.Infof("  quiet: %v", cfg.CLI.Quiet)
	logrus.Info("")
	logrus.Info("  [CONFIG]")
	logrus.Infof("  config.num_processors: %d", cfg.TOML.Config.NumProcessors)
	logrus.Infof("  config.num_writers: %d", cfg.TOML.Config.NumWriters)
	logrus.Infof("  config.batch_size: %d", cfg.TOML.Config.BatchSize)
	logrus.Infof("  config.checkpoint_file: %s", cfg.TOML.Config.CheckpointFile)
	logrus.Infof("  config.checkpoint_interval: %s", cfg.TOML.Config.CheckpointInterval)
	logrus.Info("")
	logrus.Info("  [SOURCE]")
	logrus.Infof("  source.file: %s", cfg.TOML.Source.File)
	logrus.Infof("  source.file_type: %s", cfg.TOML.Source.FileType)
	logrus.Infof("  source.file_contents: %s", cfg.TOML.Source.FileContents)
	logrus.Info("")
	logrus.Info("  [DESTINATION]")
	logrus.Infof("  destination.type: %s", cfg.TOML.Destination.Type)
	logrus.Infof("  destination.dsn: %s", cfg.TOML.Destination.DSN)
	logrus.Info("")
	logrus.Info("  [MAPPING]")

	for k, v := range cfg.TOML.Mapping.Mapping {
		logrus.Infof("  mapping.%s: %v", k, v)
	}
}
