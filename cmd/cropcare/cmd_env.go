package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var envRefresh bool

// envCmd reports conditions at the captured position
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show weather and air quality at your position",
	Long: `Capture your position and print current weather, air quality, and
advisory notes. Readings are cached per position.`,
	RunE: runEnv,
}

func init() {
	envCmd.Flags().BoolVar(&envRefresh, "refresh", false, "skip the cache and fetch fresh readings")
}

func runEnv(cmd *cobra.Command, _ []string) error {
	app, err := initializeApp()
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	var (
		report any
		runErr error
	)
	if envRefresh {
		report, runErr = app.RefreshEnv(cmd.Context())
	} else {
		report, runErr = app.Env(cmd.Context())
	}
	if runErr != nil {
		return runErr
	}
	return printJSON(report)
}
