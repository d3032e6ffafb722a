package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/workspace"
)

func init() {
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Render a markdown file in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	_, body, err := workspace.ParseFrontMatter(string(content))
	if err != nil {
		body = string(content)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(body)
		return nil
	}
	rendered, err := renderer.Render(body)
	if err != nil {
		fmt.Print(body)
		return nil
	}
	fmt.Print(rendered)
	return nil
}
