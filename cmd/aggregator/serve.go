package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/fanin/aggregator"
	"github.com/kbukum/fanin/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve GET /aggregate until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.Int("port", 0, "HTTP port (overrides server.port)")
	f.String("mode", "", "fail_fast or collect_all (overrides fanin.mode)")
	f.Duration("task-timeout", 0, "per-upstream deadline, 0 disables (overrides fanin.task_timeout)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts, map[string]string{
		"server.port":        "port",
		"fanin.mode":         "mode",
		"fanin.task_timeout": "task-timeout",
	})
	if err != nil {
		return err
	}
	logger.Init(&cfg.Logging)
	log := logger.GetGlobalLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := aggregator.NewApp(ctx, *cfg, log)
	if err != nil {
		return err
	}
	if err := app.Run(ctx); err != nil {
		log.Error("shutdown failed", logger.ErrorFields("run", err))
		return err
	}
	log.Info("stopped", logger.Fields("service", cfg.Name))
	return nil
}
