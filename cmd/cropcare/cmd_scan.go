package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cropcare/cropcare-go/internal/bootstrap"
	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
)

var (
	scanImagePath   string
	scanCropType    string
	scanCropStage   string
	scanUseLocation bool
)

// scanCmd submits one leaf photo for diagnosis
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Submit a leaf photo for diagnosis",
	Long: fmt.Sprintf(`Submit a leaf photo and print the diagnosis together with current
weather, air quality, and advisory notes.

Crop types:  %s
Crop stages: %s`,
		strings.Join(cropTypeNames(), ", "),
		strings.Join(cropStageNames(), ", ")),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanImagePath, "image", "i", "", "path to the leaf photo (required)")
	scanCmd.Flags().StringVar(&scanCropType, "crop", string(healthcheck.CropRice), "crop type")
	scanCmd.Flags().StringVar(&scanCropStage, "stage", string(healthcheck.StageVegetative), "growth stage")
	scanCmd.Flags().BoolVar(&scanUseLocation, "location", true, "attach your position to the scan")
	_ = scanCmd.MarkFlagRequired("image")
}

func runScan(cmd *cobra.Command, _ []string) error {
	image, err := os.ReadFile(scanImagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	app, err := initializeApp()
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}

	report, err := app.Scan(cmd.Context(), bootstrap.ScanInput{
		Image:       image,
		Filename:    filepath.Base(scanImagePath),
		CropType:    healthcheck.CropType(scanCropType),
		CropStage:   healthcheck.CropStage(scanCropStage),
		UseLocation: scanUseLocation,
	})
	if err != nil {
		return err
	}
	return printJSON(report)
}

func cropTypeNames() []string {
	types := healthcheck.CropTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

func cropStageNames() []string {
	stages := healthcheck.CropStages()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = string(s)
	}
	return names
}
