// shiftvoice - voice-driven work-schedule assistant.
// An agent session (Gemini Live) and a local dashboard both drive the
// same tool-call fulfillment engine over a cached schedule dataset.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kotoba-labs/shiftvoice/internal/config"
	"github.com/kotoba-labs/shiftvoice/internal/log"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "shiftvoice",
	Short: "Voice assistant for a shared work schedule",
	Long: `shiftvoice lets a conversational agent read and update a shared work
schedule. It serves a live calendar dashboard and keeps the schedule in
a local cache backed by a remote canonical document.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newExportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.Init(cfg.LogLevel)
	return cfg, nil
}
