package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cropcare",
	Short: "Crop health assistant",
	Long: `CropCare diagnoses crop health from leaf photos and reports growing
conditions at your position.

Available subcommands:
  scan    - Submit a leaf photo for diagnosis
  history - List previous detections
  env     - Show weather and air quality at your position
  tips    - Show general crop-care tips
  profile - Show the signed-in farmer
  serve   - Run the development mock API`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(scanCmd, historyCmd, envCmd, tipsCmd, profileCmd, serveCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// printJSON renders command output on stdout. Logs go to stderr so the
// two streams can be piped separately.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
