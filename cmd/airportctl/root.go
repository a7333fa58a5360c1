package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skyhaul/airportscript/internal/config"
)

const appName = "airportctl"

var (
	configDir string
	logLevel  string

	// cfg is filled before any subcommand runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Run AI airport scripts against a scenario",
	Long: `airportctl loads a scenario (map, towns, companies, stations) and lets
Lua AI scripts query and build airports through the AIAirport and
AIAirportType API. Build and remove calls are applied after the script
returns, like the game's command queue.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory holding "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.Load(configDir); err != nil && !config.IsNotFound(err) {
		return err
	}
	if logLevel != "" {
		viper.Set("logLevel", logLevel)
	}
	c, err := config.Settings()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c
	return nil
}
