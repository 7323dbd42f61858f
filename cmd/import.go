package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/scenezero/storyboard/export"
	"github.com/scenezero/storyboard/sbml"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [JSON_FILE]",
	Short: "import an exported JSON deck back into slide markup",
	Long:  `import an exported JSON deck back into slide markup.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := args[0]
		r, err := os.Open(f)
		if err != nil {
			return err
		}
		defer r.Close()
		deck, err := export.DecodeJSON(r)
		if err != nil {
			return err
		}
		output := strings.TrimSuffix(f, ".json") + ".sb"
		if err := os.WriteFile(output, []byte(sbml.Format(deck)), 0o644); err != nil {
			return err
		}
		fmt.Println(output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
