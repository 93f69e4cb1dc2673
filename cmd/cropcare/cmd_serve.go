package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// serveCmd runs the development mock API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development mock API",
	Long: `Run a local mock of the CropCare backend with deterministic canned
responses. Useful for development and demos without the real service.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	mock, err := initializeMockAPI()
	if err != nil {
		return fmt.Errorf("wire mock api: %w", err)
	}
	return mock.Run(cmd.Context())
}
