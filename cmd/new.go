/*
Copyright © 2025 the storyboard authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/scenezero/storyboard/sbml"
	"github.com/spf13/cobra"
)

var title string

var newCmd = &cobra.Command{
	Use:   "new [OUTLINE_FILE]",
	Short: "create a new storyboard from a Markdown outline",
	Long: `create a new storyboard from a Markdown outline.

The first level-1 heading becomes the deck title and each level-2 heading
starts a new slide. The generated slide markup is written next to the
outline with a .sb extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := args[0]
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		deck, err := sbml.FromOutline(b)
		if err != nil {
			return err
		}
		if title != "" {
			deck.Title = title
		}
		output := strings.TrimSuffix(f, ".md") + ".sb"
		if err := os.WriteFile(output, []byte(sbml.Format(deck)), 0o644); err != nil {
			return err
		}
		fmt.Println(output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&title, "title", "t", "", "title of the storyboard")
}
