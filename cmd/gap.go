package cmd

import (
	"github.com/spf13/cobra"
)

var gapQuestion string

var gapCmd = &cobra.Command{
	Use:   "gap [files...]",
	Short: "Run a compliance gap analysis over submission documents",
	Long: `Indexes the given submission documents (PDF, DOCX, text, or ZIP
archives of those) and runs the full specialist pipeline: document
processing, cybersecurity and regulatory analysis, audit scoring, and
the final compliance gap report.

Example:
  fdassist gap device-description.pdf cybersecurity-plan.docx`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uploads, err := readUploads(args)
		if err != nil {
			return err
		}
		return runTurn(cmd.Context(), gapQuestion, uploads)
	},
}

func init() {
	gapCmd.Flags().StringVarP(&gapQuestion, "question", "q", "", "optional focus question for the analysis")
	rootCmd.AddCommand(gapCmd)
}
