package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// tipsCmd prints general crop-care tips
var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Show general crop-care tips",
	RunE:  runTips,
}

// profileCmd prints the signed-in farmer
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in farmer",
	RunE:  runProfile,
}

func runTips(cmd *cobra.Command, _ []string) error {
	app, err := initializeApp()
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	tips, err := app.Tips(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(tips)
}

func runProfile(cmd *cobra.Command, _ []string) error {
	app, err := initializeApp()
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	return printJSON(app.Profile(cmd.Context()))
}
