package main

import (
	"fmt"
	"os"

	"jios-backend/pkg/config"
	"jios-backend/pkg/handlers"
	"jios-backend/pkg/logging"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "jiosd",
		Short:   "Jios - climbing gym pass marketplace backend",
		Version: handlers.Version,
		Long: `jiosd serves the Jios REST API and carries the operational
commands around it: schema migrations, seed data and dev tokens.

Configuration comes from the environment (.env.local / .env.production).`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(timingsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig 加载并校验配置，同时初始化日志与时区
func loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	logging.Setup(logging.Options{
		Production: cfg.IsProduction(),
		Level:      cfg.LogLevel,
		Debug:      cfg.Debug,
		Output:     os.Stderr, // stdout stays clean for command output
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.ApplyTimezone(); err != nil {
		return nil, err
	}
	return cfg, nil
}
