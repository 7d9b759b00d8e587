package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/yt-channel-pipeline/internal/config"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/logging"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/metrics"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/pipeline"
)

type rootOptions struct {
	configFile string
	envFiles   []string
	logPretty  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "yt-pipeline",
		Short:         "Collect YouTube channel, video and comment data into CSV files",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading YT_* variables")
	root.PersistentFlags().BoolVar(&opts.logPretty, "pretty", false, "human readable logs")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run every stage in dependency order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runStages(cmd.Context(), cmd.OutOrStdout(), opts)
			},
		},
		&cobra.Command{
			Use:       "stage <name>",
			Short:     "Run a single stage against the files of earlier stages",
			Args:      cobra.ExactArgs(1),
			ValidArgs: stageNames(),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !contains(stageNames(), args[0]) {
					return fmt.Errorf("%w %q (see 'yt-pipeline stages')", pipeline.ErrUnknownStage, args[0])
				}
				return runStages(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "stages",
			Short: "List stages in execution order",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				for _, s := range (&pipeline.Pipeline{}).Stages() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-14s after: %v\n", s.Name, s.After)
				}
			},
		},
	)
	return root
}

func stageNames() []string {
	r, err := (&pipeline.Pipeline{}).NewRunner()
	if err != nil {
		return nil
	}
	return r.Stages()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func runStages(ctx context.Context, out io.Writer, opts *rootOptions, names ...string) error {
	if err := config.LoadEnvFiles(opts.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty || opts.logPretty,
	})

	built, err := pipeline.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer built.Close()

	runner, err := built.NewRunner()
	if err != nil {
		return err
	}
	runner.Retries = cfg.Retries
	runner.RetryDelay = cfg.RetryDelay

	res, runErr := runner.Run(ctx, names...)
	if res != nil {
		printResult(out, res)
		if cfg.PushgatewayURL != "" {
			if err := metrics.Push(context.WithoutCancel(ctx), cfg.PushgatewayURL, res.RunID, nil); err != nil {
				log.Warn().Err(err).Str("url", cfg.PushgatewayURL).Msg("Could not push metrics")
			}
		}
	}
	if state, err := built.Client.QuotaState(ctx); err == nil {
		log.Info().Int("used", state.Used).Int("remaining", state.Remaining()).Msg("Quota after run")
	}
	return runErr
}

func printResult(out io.Writer, res *pipeline.Result) {
	fmt.Fprintf(out, "run %s\n", res.RunID)
	for _, s := range res.Stages {
		status := "ok"
		if s.Skipped {
			status = "skipped: " + s.Err.Error()
		} else if s.Err != nil {
			status = "failed: " + s.Err.Error()
		}
		line := fmt.Sprintf("  %-14s %-8s attempts=%d %s", s.Name, s.Duration.Round(time.Millisecond), s.Attempts, status)
		if s.Summary != nil {
			line += " (" + s.Summary.String() + ")"
		}
		fmt.Fprintln(out, line)
	}
}
