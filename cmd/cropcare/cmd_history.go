package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyOffset int
)

// historyCmd lists previous detections
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous detections",
	Long:  `List previously recorded detections, newest first.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of detections")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "number of detections to skip")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	app, err := initializeApp()
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	detections, err := app.History(cmd.Context(), historyLimit, historyOffset)
	if err != nil {
		return err
	}
	return printJSON(detections)
}
