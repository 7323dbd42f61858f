package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/scenezero/storyboard"
	"github.com/scenezero/storyboard/config"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check storyboard environment and configuration",
	Long:  `Check storyboard environment and configuration to ensure everything is set up correctly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Color setup
		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		yellow := color.New(color.FgYellow)
		bold := color.New(color.Bold)

		allOK := true

		// 1. Check headless Chrome
		cmd.Print("🔍 Checking headless Chrome ... ")

		cfg, cfgErr := config.Load(profile)
		if err := storyboard.CheckChrome(ctx); err != nil {
			if cfgErr == nil && cfg.SnapshotCommand != "" {
				yellow.Println("⚠️ NOT AVAILABLE")
				cmd.Printf("   Falling back to snapshotCommand: %s\n", cfg.SnapshotCommand)
			} else {
				red.Println("✗ NOT AVAILABLE")
				cmd.Printf("   Error: %v\n", err)
				cmd.Println("   Structural extraction and snapshots need Chrome or Chromium in PATH,")
				cmd.Println("   or a snapshotCommand in the configuration file.")
				allOK = false
			}
		} else {
			green.Println("✓ OK")
		}

		// 2. Check configuration file (optional)
		cmd.Print("🔧 Checking configuration file ... ")

		if cfgErr != nil {
			yellow.Println("⚠️ CONFIG ERROR")
			cmd.Printf("   Error loading config: %v\n", cfgErr)
			allOK = false
		} else {
			green.Println("✓ OK")
			cmd.Println("   Configuration loaded successfully")
		}

		// 3. Check themes file (optional)
		cmd.Print("🎨 Checking themes file ... ")

		if cfgErr == nil {
			if _, err := os.Stat(cfg.ThemesPath()); os.IsNotExist(err) {
				yellow.Println("⚠️ NOT FOUND")
				cmd.Printf("   Expected at: %s (themes are optional)\n", cfg.ThemesPath())
			} else if themes, err := storyboard.LoadThemes(cfg.ThemesPath()); err != nil {
				red.Println("✗ INVALID")
				cmd.Printf("   Error loading themes: %v\n", err)
				allOK = false
			} else {
				green.Println("✓ OK")
				cmd.Printf("   %d theme(s) available\n", len(themes))
			}
		} else {
			yellow.Println("⚠️ SKIPPED")
		}

		// Final message
		cmd.Println()
		if allOK {
			bold.Printf("🎉 ")
			green.Print("All checks passed! You are ready to use storyboard")
			bold.Println(".")
			cmd.Println()
			cmd.Println("Try creating a new storyboard from an outline:")
			yellow.Println("  storyboard new outline.md")
		} else {
			red.Println("⚠️  Setup is incomplete.")
			cmd.Println("\nPlease fix the issues above to use storyboard properly.")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
