package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fabiorvs/fake-requests/internal/app"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	envFile   string
	port      int
	mocksDir  string
	mocksFile string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "fakerequests",
		Short: "Configurable HTTP mock server that records every request",
		Long: `fakerequests serves fake bearer tokens, canned mock responses and a catch-all
capture route, keeping every request in memory for inspection.

Configuration comes from environment variables, optionally loaded from a .env
file, and can be overridden with flags.

Examples:
  fakerequests                          # Use ./.env and the environment
  fakerequests --env-file staging.env   # Load another env file
  fakerequests -p 8080 --mocks-dir ./fixtures
  fakerequests --mocks-file mocks.yaml  # Declare mocks in YAML`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), f)
			if err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			return a.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&f.envFile, "env-file", ".env", "env file loaded before reading the environment")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "HTTP server port (overrides PORT)")
	cmd.Flags().StringVar(&f.mocksDir, "mocks-dir", "", "directory of response files (overrides MOCKS_DIR)")
	cmd.Flags().StringVar(&f.mocksFile, "mocks-file", "", "YAML file of mock definitions (overrides MOCKS_FILE)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "", "log format: text, json (overrides LOG_FORMAT)")

	return cmd
}

// loadConfig reads the env file, then the environment, then explicitly set flags.
// Variables already present in the environment win over the env file.
func loadConfig(set *pflag.FlagSet, f flags) (app.Config, error) {
	if err := godotenv.Load(f.envFile); err != nil && !isNotExist(err) {
		return app.Config{}, fmt.Errorf("failed to load env file %s: %w", f.envFile, err)
	}

	cfg := app.LoadEnv(os.Getenv)

	if set.Changed("port") {
		cfg.Port = f.port
	}
	if set.Changed("mocks-dir") {
		cfg.MocksDir = f.mocksDir
	}
	if set.Changed("mocks-file") {
		cfg.MocksFile = f.mocksFile
	}
	if set.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	cfg.Normalize()
	return cfg, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
