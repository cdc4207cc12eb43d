package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthgate/config"
)

var (
	// Global flags
	cfgFile  string
	envFiles []string
)

var rootCmd = &cobra.Command{
	Use:   "healthgate",
	Short: "Healthgate - aggregated health endpoint",
	Long: `Healthgate runs every registered health check concurrently, merges their
details into one JSON document and serves it over HTTP with 200 when all
checks are healthy and 503 otherwise.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults only when empty)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, ".env files to load before the config")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile, envFiles...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
