package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about FDA guidance",
	Long: `Routes the question to the cybersecurity or regulatory specialist
based on its keywords and streams the answer with cited sources.

Example:
  fdassist ask "What does the FDA expect for SOUP in a 510(k)?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTurn(cmd.Context(), strings.Join(args, " "), nil)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
