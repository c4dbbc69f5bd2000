package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/fanin/aggregator"
	"github.com/kbukum/fanin/fanin"
	"github.com/kbukum/fanin/logger"
)

func newFetchCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [name=url ...]",
		Short: "Run one aggregation and print the report as JSON",
		Long: `Run one aggregation and print the report as JSON.

Upstreams given as name=url arguments replace the configured ones. With
collect_all the report is printed even when some upstreams failed; the
command then exits non-zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts, args)
		},
	}
	f := cmd.Flags()
	f.String("mode", "", "fail_fast or collect_all (overrides fanin.mode)")
	f.Duration("task-timeout", 0, "per-upstream deadline, 0 disables (overrides fanin.task_timeout)")
	f.StringArray("only", nil, "query only this upstream (repeatable)")
	return cmd
}

func runFetch(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := loadConfig(cmd, opts, map[string]string{
		"fanin.mode":         "mode",
		"fanin.task_timeout": "task-timeout",
	})
	if err != nil {
		return err
	}
	if len(args) > 0 {
		ups, err := aggregator.ParseUpstreams(args)
		if err != nil {
			return err
		}
		cfg.Aggregator.Upstreams = ups
	}
	// stdout carries the report.
	cfg.Logging.Output = "stderr"
	logger.Init(&cfg.Logging)
	logger.RegisterDefaults("fanin")

	coord := fanin.New[aggregator.Response](fanin.WithConfig(cfg.FanIn))
	svc, err := aggregator.NewService(cfg.Aggregator, coord, logger.GetGlobalLogger())
	if err != nil {
		return err
	}
	only, _ := cmd.Flags().GetStringArray("only")

	report, runErr := svc.Aggregate(cmd.Context(), only...)
	var failures *fanin.Failures
	if runErr != nil && !stderrors.As(runErr, &failures) {
		return runErr
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	if failures != nil {
		return failures.AppError()
	}
	return nil
}
