package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iconsmith/iconsmith-backend/config"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
)

const serviceName = "iconsmith"

var rootCmd = &cobra.Command{
	Use:           serviceName,
	Short:         "Icon matching API for design images",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the environment and initializes the process logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger.Init(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	return cfg, nil
}
