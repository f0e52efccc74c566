package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stockalert/internal/config"
	"stockalert/internal/notify"
	"stockalert/internal/poller"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the watch daemon",
	Long:  "Poll quotes for the configured watchlist and send alerts on threshold crossings. Edits to config.yaml are picked up without a restart.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfgPath, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if len(cfg.Watchlist) == 0 {
		return fmt.Errorf("watchlist is empty; add symbols to %s", cfgPath)
	}

	store, closeStore, err := openStore("daemon")
	if err != nil {
		return err
	}
	defer closeStore()

	var notifiers []notify.Notifier
	if cfg.Notify.Console {
		notifiers = append(notifiers, notify.NewConsoleNotifier())
	}
	if cfg.Notify.SMTP.Enabled {
		notifiers = append(notifiers, notify.NewSMTPNotifier(cfg.Notify.SMTP, store))
	}
	if cfg.Notify.Twilio.Enabled {
		notifiers = append(notifiers, notify.NewTwilioNotifier(cfg.Notify.Twilio, store))
	}
	if len(notifiers) == 0 {
		slog.Warn("no alert channels enabled, falling back to console")
		notifiers = append(notifiers, notify.NewConsoleNotifier())
	}

	logger := slog.Default()
	dispatcher := notify.NewDispatcher(logger, notify.DefaultDedupeWindow, notifiers...)
	p := poller.New(cfg, poller.NewClient(cfg.QuoteEndpoint), dispatcher, logger)

	slog.Info("stockalert watch starting",
		"symbols", len(cfg.Watchlist),
		"interval", cfg.Interval(),
		"secret_backend", store.MethodID(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		err := poller.WatchConfig(ctx, cfgPath, logger, func() {
			reloaded, err := config.Load(cfgPath)
			if err != nil {
				logger.Error("config reload failed", "error", err)
				return
			}
			if err := reloaded.Validate(); err != nil {
				logger.Error("reloaded config invalid, keeping previous", "error", err)
				return
			}
			p.UpdateConfig(reloaded)
		})
		if err != nil {
			logger.Error("config watcher stopped", "error", err)
		}
	}()

	return p.Run(ctx)
}
