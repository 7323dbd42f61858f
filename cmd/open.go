package cmd

import (
	"os"
	"path/filepath"

	"github.com/pkg/browser"
	"github.com/scenezero/storyboard/export"
	"github.com/scenezero/storyboard/sbml"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open [STORYBOARD_FILE]",
	Short: "preview a storyboard in the browser",
	Long:  `preview a storyboard in the browser.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := args[0]
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		deck := sbml.Parse(string(b))

		dir, err := os.MkdirTemp("", "storyboard")
		if err != nil {
			return err
		}
		preview := filepath.Join(dir, "preview.html")
		w, err := os.Create(preview)
		if err != nil {
			return err
		}
		if err := export.Preview(w, deck); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		cmd.Println(preview)
		return browser.OpenFile(preview)
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
