// Package main provides the resuai command: the HTTP API server plus local
// tools for extraction, PDF rendering and schema migration.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/resuai/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "resuai",
	Short: "ResuAI portfolio and resume API",
	Long: "ResuAI turns an uploaded resume into an editable portfolio document, " +
		"and keeps resume drafts that can be revised by chat and previewed as PDF.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file (optional, environment overrides it)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the effective configuration for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
