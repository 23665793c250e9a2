package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mailroom/internal/daemon"
	"mailroom/internal/logging"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll the source continuously and analyze new documents",
		Long:  "Runs until interrupted: polls the configured source on an interval, queues anything new, and drains the queue. A lock file prevents a second watcher.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sess, err := ctx.buildSession(cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			logPath := filepath.Join(cfg.Paths.LogDir, "mailroom.log")
			logFile, err := logging.OpenLogFile(logPath)
			if err != nil {
				return err
			}
			defer logFile.Close()
			watchLogger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: "json",
				Output: logFile,
			})
			if err != nil {
				return err
			}

			d, err := daemon.New(daemon.Config{
				Store:        sess.store,
				Engine:       sess.engine,
				Source:       sess.source,
				Kind:         sess.kind,
				Location:     sess.loc,
				Logger:       watchLogger,
				PollInterval: time.Duration(cfg.Engine.PollIntervalSeconds) * time.Second,
				LockDir:      cfg.Paths.LogDir,
			})
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching (lock %s, log %s). Press Ctrl-C to stop.\n", d.LockPath(), logPath)

			<-runCtx.Done()
			d.Stop()
			fmt.Fprintln(cmd.OutOrStdout(), "Stopped.")
			return nil
		},
	}
}
