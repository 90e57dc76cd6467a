package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postrelay/worker"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the poller on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		r, closeStore, err := buildRunner(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		retryBase, err := time.ParseDuration(cfg.Poll.RetryBase)
		if err != nil {
			return err
		}
		// Fail fast on a bad schedule; inside the manager the error would
		// only surface at shutdown.
		if _, err := cron.ParseStandard(cfg.Poll.Schedule); err != nil {
			return fmt.Errorf("invalid poll.schedule: %w", err)
		}

		poller := &worker.Poller{
			Runner:    r,
			Schedule:  cfg.Poll.Schedule,
			RetryMax:  cfg.Poll.RetryMax,
			RetryBase: retryBase,
			Log:       slog.Default(),
		}
		slog.Info("starting poller", "account", cfg.Source.Account, "schedule", cfg.Poll.Schedule)

		mgr := worker.NewManager(poller)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
