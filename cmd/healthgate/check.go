package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthgate/health"
)

// errUnhealthy makes the process exit non-zero when a check fails.
var errUnhealthy = errors.New("healthgate: unhealthy")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run every check once and print the details",
	Long: `Run the built-in checks once in process, print the merged details as
JSON and exit non-zero when any check is unhealthy. No port is bound.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout carries only the JSON document.
	cfg.Observe.Tracing.Writer = cmd.ErrOrStderr()
	cfg.Observe.Metrics.Writer = cmd.ErrOrStderr()

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.observer.Shutdown(context.Background()) }()

	return printCheck(ctx, cmd.OutOrStdout(), a.service)
}

func printCheck(ctx context.Context, w io.Writer, svc *health.Service) error {
	resp := svc.HealthCheck(ctx)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp.Details); err != nil {
		return fmt.Errorf("failed to encode details: %w", err)
	}

	if !resp.IsHealthy {
		return errUnhealthy
	}
	return nil
}
