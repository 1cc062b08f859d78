package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"podscribe/internal/config"
	"podscribe/internal/engine"
	"podscribe/internal/feed"
	"podscribe/internal/importer"
	"podscribe/internal/logging"
	"podscribe/internal/monitor"
	"podscribe/internal/notifications"
	"podscribe/internal/processor"
	"podscribe/internal/state"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitor daemon",
		Long:  "Poll the configured feeds and import directory until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := newDaemonLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logStartupSnapshot(logger, cfg)

			m, store, err := buildMonitor(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			daemon := monitor.NewDaemon(cfg, m, logger)
			return daemon.Run(signalCtx)
		},
	}
}

func newOnceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single discovery pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := newDaemonLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			m, store, err := buildMonitor(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := m.RunPass(signalCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pass complete: %d selected, %d processed, %d failed (%d/%d feeds failed)\n",
				stats.Selected, stats.Processed, stats.Failed, stats.FeedsFailed, stats.FeedsPolled)
			if stats.Failed > 0 {
				return fmt.Errorf("%d episode(s) failed; they will be retried on the next pass", stats.Failed)
			}
			return nil
		},
	}
}

// buildMonitor wires the full pipeline from configuration. The caller
// owns the returned store.
func buildMonitor(cfg *config.Config, logger *slog.Logger) (*monitor.Monitor, *state.Store, error) {
	store, err := state.Open(cfg.StateFile())
	if err != nil {
		return nil, nil, fmt.Errorf("open state store: %w", err)
	}

	transcriber, err := engine.New(cfg.Engine)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	notifier := notifications.NewService(cfg)
	feedSource := feed.NewSource(logger, time.Duration(cfg.Processing.DownloadTimeout)*time.Second)

	var (
		scanner      *importer.Scanner
		importSource monitor.ImportSource
		claims       processor.Claimer
	)
	if cfg.ImportEnabled() {
		grace := time.Duration(cfg.Processing.StagingGraceMinutes) * time.Minute
		scanner = importer.NewScanner(cfg.Paths.ImportDir, cfg.StagingDir(), cfg.QuarantineDir(), grace, logger)
		importSource = scanner
		claims = scanner
	}

	proc := processor.New(cfg, store, transcriber, notifier, claims, logger)
	return monitor.New(cfg, store, feedSource, importSource, proc, logger), store, nil
}

func newDaemonLogger(cfg *config.Config) (*slog.Logger, error) {
	logPath := filepath.Join(cfg.Paths.LogDir, "podscribe.log")
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
}

// logStartupSnapshot records the effective configuration once at boot so
// operators can confirm what this instance is watching.
func logStartupSnapshot(logger *slog.Logger, cfg *config.Config) {
	logger.Info("podscribe starting",
		logging.String("version", version),
		logging.Int("feeds", len(cfg.Feeds.URLs)),
		logging.Bool("imports", cfg.ImportEnabled()),
		logging.String("engine", cfg.Engine.Name),
		logging.String("model", cfg.Engine.Model),
		logging.String("device", cfg.Engine.Device),
		logging.String("output_dir", cfg.Paths.OutputDir),
		logging.Int("lookback_days", cfg.Feeds.LookbackDays),
		logging.Bool("keep_audio", cfg.Processing.KeepAudio),
	)
	for _, feedURL := range cfg.Feeds.URLs {
		logger.Info("watching feed", logging.String(logging.FieldFeedURL, feedURL))
	}
	if cfg.Notifications.DiscordWebhookURL != "" {
		logger.Info("discord notifications enabled")
	}
}
