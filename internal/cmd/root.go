package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/prometheus-swarm/harness/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "harness",
	Short: "Staged end-to-end task harness",
	Long: `harness drives a sequence of signed worker interactions against a
task coordination service, round by round, persisting state so an
interrupted run picks up at its last completed step.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	logLevel  string
	logFormat string
)

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cfg := log.DefaultConfig()
		cfg.Level = log.ParseLevel(logLevel)
		cfg.Format = log.ParseFormat(logFormat)
		log.SetDefaultLogger(log.New(cfg))
	}
}
