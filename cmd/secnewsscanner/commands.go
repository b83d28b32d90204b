package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"SecurityNewsScanner/internal/app"
	"SecurityNewsScanner/internal/config"
	"SecurityNewsScanner/internal/logging"
)

var version = "dev"

type rootOptions struct {
	configPath string
	startURL   string
	maxPages   int
}

func (o *rootOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "path to YAML config (overrides SECNEWS_CONFIG)")
	flags.StringVar(&o.startURL, "start-url", "", "first listing page to crawl")
	flags.IntVar(&o.maxPages, "max-pages", 0, "maximum listing pages per run")
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "secnewsscanner",
		Short:         "Collect, classify and summarize security news articles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.register(root)

	root.AddCommand(
		newRunCommand(opts),
		newScheduleCommand(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "secnewsscanner %s\n", version)
			},
		},
	)
	return root
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Crawl once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd, opts, func(application *app.Application, logger *slog.Logger) error {
				report, err := application.Run(cmd.Context())
				if err != nil {
					logger.Error("run failed", "error", err)
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pages=%d links=%d persisted=%d aborted=%t\n",
					report.Pages, report.Links, len(report.Persisted), report.Aborted)
				return nil
			})
		},
	}
}

func newScheduleCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Crawl on the configured cron expression until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd, opts, func(application *app.Application, logger *slog.Logger) error {
				if err := application.Schedule(cmd.Context()); err != nil {
					logger.Error("scheduler stopped", "error", err)
					return err
				}
				return nil
			})
		},
	}
}

func withApplication(cmd *cobra.Command, opts *rootOptions, fn func(*app.Application, *slog.Logger) error) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.NewWithFile(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}
	defer closeLog()

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("application not started", "error", err)
		return err
	}
	defer application.Close()

	return fn(application, logger)
}

func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	if opts.configPath != "" {
		if err := os.Setenv("SECNEWS_CONFIG", opts.configPath); err != nil {
			return config.Config{}, err
		}
	}
	cfg := config.Load()

	if cmd.Flags().Changed("start-url") {
		cfg.Run.StartURL = opts.startURL
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.Run.MaxPages = opts.maxPages
	}
	return cfg, nil
}
