package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthgate/observe"
)

var runFlags struct {
	shutdownTimeout time.Duration
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Serve the health endpoint",
	Long: `Serve the aggregated health endpoint until SIGINT or SIGTERM.

Examples:
  # Start with defaults
  healthgate run

  # Start with a config file
  healthgate run --config /etc/healthgate/healthgate.yaml

  # Override the port through the environment
  HEALTHGATE_HEALTHCHECK_PORT=9000 healthgate run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runFlags.shutdownTimeout, "shutdown-timeout", 15*time.Second, "time allowed for graceful shutdown")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	if err := a.start(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), runFlags.shutdownTimeout)
		defer cancel()
		_ = a.shutdown(shutdownCtx)
		return err
	}

	a.logger.Info(ctx, "healthgate started",
		observe.Field{Key: "state", Value: a.service.State().String()},
		observe.Field{Key: "instance_id", Value: a.process.InstanceID()},
	)

	<-ctx.Done()
	a.logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), runFlags.shutdownTimeout)
	defer cancel()
	return a.shutdown(shutdownCtx)
}
